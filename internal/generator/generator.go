// Package generator renders a social-preview card for every authored post of
// a finished static build.
//
// A run filters the build's routes, prepares the cards directory, opens one
// browser session and then handles the qualifying routes strictly one after
// another. The first failing route ends the run; the browser session is
// released on every exit path.
package generator

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/ogcards/internal/card"
	"github.com/go-scripts/ogcards/internal/routes"
	"github.com/go-scripts/ogcards/internal/title"
	"github.com/go-scripts/ogcards/internal/types"
	"github.com/go-scripts/ogcards/internal/writer"
)

// MissingTitle selects what happens to a page without a <title>.
type MissingTitle string

const (
	// MissingTitleAbort fails the whole run.
	MissingTitleAbort MissingTitle = "abort"
	// MissingTitleSkip logs a warning and renders no card for the page.
	MissingTitleSkip MissingTitle = "skip"
	// MissingTitleDefault renders the card with Config.DefaultTitle.
	MissingTitleDefault MissingTitle = "default"
)

// ParseMissingTitle validates a policy name. Empty means abort.
func ParseMissingTitle(s string) (MissingTitle, error) {
	switch m := MissingTitle(s); m {
	case "":
		return MissingTitleAbort, nil
	case MissingTitleAbort, MissingTitleSkip, MissingTitleDefault:
		return m, nil
	default:
		return "", fmt.Errorf("unknown missing-title policy %q", s)
	}
}

const (
	DefaultWidth  = 1200
	DefaultHeight = 669
)

// Config holds the generator settings
type Config struct {
	OutDir       string
	TemplatePath string
	ContentExt   string
	PathPrefix   string
	Width        int
	Height       int
	MissingTitle MissingTitle
	DefaultTitle string
}

func (c *Config) setDefaults() {
	if c.TemplatePath == "" {
		c.TemplatePath = card.DefaultTemplatePath
	}
	if c.ContentExt == "" {
		c.ContentExt = routes.DefaultContentExt
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.MissingTitle == "" {
		c.MissingTitle = MissingTitleAbort
	}
}

// Capturer renders HTML into a PNG screenshot.
type Capturer interface {
	Capture(ctx context.Context, html string, width, height int) ([]byte, error)
	Close()
}

// Opener starts a Capturer session for one run.
type Opener func(ctx context.Context) (Capturer, error)

// Observer is notified about run progress.
type Observer interface {
	OnStart(total int)
	OnRoute(index int, route types.Route)
	OnCard(c types.Card)
	OnFinish(report types.Report, err error)
}

type nopObserver struct{}

func (nopObserver) OnStart(int)                  {}
func (nopObserver) OnRoute(int, types.Route)     {}
func (nopObserver) OnCard(types.Card)            {}
func (nopObserver) OnFinish(types.Report, error) {}

// Generator renders cards for a finished build
type Generator struct {
	config   Config
	open     Opener
	logger   *log.Logger
	observer Observer
}

// New creates a Generator. A nil logger uses the default logger.
func New(config Config, open Opener, logger *log.Logger) *Generator {
	config.setDefaults()
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{
		config:   config,
		open:     open,
		logger:   logger,
		observer: nopObserver{},
	}
}

// SetObserver installs a progress observer.
func (g *Generator) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	g.observer = o
}

// Run renders a card for every qualifying route in order.
func (g *Generator) Run(ctx context.Context, all []types.Route) (report types.Report, err error) {
	g.logger.Info("Generating cards", "out_dir", g.config.OutDir, "path_prefix", g.config.PathPrefix)

	qualifying := routes.Filter(all, g.config.ContentExt)
	report.Considered = len(all)
	report.Qualifying = len(qualifying)
	g.logger.Debug("Filtered routes", "total", len(all), "qualifying", len(qualifying))

	fw, err := writer.New(g.config.OutDir, g.config.PathPrefix)
	if err != nil {
		return report, err
	}

	session, err := g.open(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to open browser session: %w", err)
	}
	defer session.Close()

	g.observer.OnStart(len(qualifying))
	defer func() { g.observer.OnFinish(report, err) }()

	for i, route := range qualifying {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		g.observer.OnRoute(i, route)
		c, written, err := g.processRoute(ctx, session, fw, route)
		if err != nil {
			g.logger.Debug("Stopping at failed route", "route", route.Pathname, "err", err)
			return report, fmt.Errorf("route %s: %w", route.Pathname, err)
		}
		if written {
			report.Written++
			report.Cards = append(report.Cards, c)
			g.logger.Debug("Wrote card", "route", route.Pathname, "path", c.Path, "bytes", c.Size)
		} else {
			report.Skipped++
		}
		g.observer.OnCard(c)
	}

	g.logger.Info("Cards generated", "written", report.Written, "skipped", report.Skipped, "dir", fw.Dir())
	return report, nil
}

// processRoute renders one route. written is false when the route was skipped.
func (g *Generator) processRoute(ctx context.Context, session Capturer, fw *writer.FileWriter, route types.Route) (c types.Card, written bool, err error) {
	c.Route = route

	if err := routes.Validate(route); err != nil {
		return c, false, err
	}

	page, err := os.ReadFile(route.DistPath)
	if err != nil {
		return c, false, fmt.Errorf("failed to read built page: %w", err)
	}

	res := title.Extract(string(page))
	switch {
	case res.Found:
		c.Title = res.Title
	case g.config.MissingTitle == MissingTitleSkip:
		g.logger.Warn("Skipping page without title", "route", route.Pathname, "file", route.DistPath)
		return c, false, nil
	case g.config.MissingTitle == MissingTitleDefault:
		g.logger.Warn("Using default title", "route", route.Pathname, "title", g.config.DefaultTitle)
		c.Title = g.config.DefaultTitle
	default:
		return c, false, fmt.Errorf("%s: %w", route.DistPath, title.ErrNotFound)
	}

	tpl, err := card.LoadTemplate(g.config.TemplatePath)
	if err != nil {
		return c, false, err
	}

	shot, err := session.Capture(ctx, card.Materialize(tpl, c.Title), g.config.Width, g.config.Height)
	if err != nil {
		return c, false, err
	}

	shot, err = card.Normalize(shot, g.config.Width, g.config.Height)
	if err != nil {
		return c, false, err
	}

	c.Path, err = fw.Write(route.Pathname, shot)
	if err != nil {
		return c, false, err
	}
	c.Size = len(shot)
	return c, true, nil
}

// IsContentError reports whether err stems from the site's content rather
// than from the environment.
func IsContentError(err error) bool {
	return errors.Is(err, title.ErrNotFound) || errors.Is(err, routes.ErrInvalidRoute)
}
