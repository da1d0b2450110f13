package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/go-scripts/ogcards/internal/browser"
	"github.com/go-scripts/ogcards/internal/card"
	"github.com/go-scripts/ogcards/internal/generator"
	"github.com/go-scripts/ogcards/internal/progress"
	"github.com/go-scripts/ogcards/internal/routes"
	"github.com/go-scripts/ogcards/internal/watch"
)

// RunFlags are shared by generate and watch
type RunFlags struct {
	OutDir       string        `short:"o" help:"Build output directory" env:"OGCARDS_OUT_DIR"`
	Routes       string        `short:"r" help:"Route manifest, YAML or JSON (- reads stdin)" env:"OGCARDS_ROUTES"`
	Template     string        `short:"t" help:"Card template (default ${default_template})" env:"OGCARDS_TEMPLATE"`
	ContentExt   string        `help:"Extension of authored posts (default .mdx)" env:"OGCARDS_CONTENT_EXT"`
	PathPrefix   string        `help:"Site base path stripped from route paths" env:"OGCARDS_PATH_PREFIX"`
	Width        int           `help:"Viewport width (default 1200)" env:"OGCARDS_WIDTH"`
	Height       int           `help:"Viewport height (default 669)" env:"OGCARDS_HEIGHT"`
	MissingTitle string        `help:"Pages without <title>: abort, skip or default" env:"OGCARDS_MISSING_TITLE"`
	DefaultTitle string        `help:"Title used when missing-title is default" env:"OGCARDS_DEFAULT_TITLE"`
	PageTimeout  time.Duration `help:"Per-page render timeout, 0 waits forever" env:"OGCARDS_PAGE_TIMEOUT"`
	ChromePath   string        `help:"Chrome or Chromium binary" env:"OGCARDS_CHROME_PATH"`
	NoProgress   bool          `help:"Disable the progress spinner" env:"OGCARDS_NO_PROGRESS"`
}

var CLI struct {
	Config string `short:"c" help:"Configuration file path" default:"ogcards.yaml" env:"OGCARDS_CONFIG"`
	Debug  bool   `help:"Enable debug logging" env:"OGCARDS_DEBUG"`

	Generate struct {
		Flags RunFlags `embed:""`
	} `cmd:"" default:"withargs" help:"Render cards for a finished build"`

	Watch struct {
		Flags    RunFlags      `embed:""`
		Debounce time.Duration `help:"Quiet period before regenerating" default:"500ms"`
	} `cmd:"" help:"Render cards, then re-render when the manifest or template changes"`
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	kctx := kong.Parse(&CLI,
		kong.Name("ogcards"),
		kong.Description("Render social-preview cards for the posts of a static site build."),
		kong.Vars{"default_template": card.DefaultTemplatePath},
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "ogcards",
	})
	if CLI.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	log.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch kctx.Command() {
	case "generate":
		err = runGenerate(ctx, logger, CLI.Generate.Flags)
	case "watch":
		err = runWatch(ctx, logger, CLI.Watch.Flags, CLI.Watch.Debounce)
	default:
		err = fmt.Errorf("unknown command %q", kctx.Command())
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		if generator.IsContentError(err) {
			logger.Error("Card generation failed; fix the page or set missing_title", "err", err)
		} else {
			logger.Error("Card generation failed", "err", err)
		}
		stop()
		os.Exit(1)
	}
}

func resolveConfig(flags RunFlags) (*Configuration, error) {
	cfg, err := loadConfig(CLI.Config)
	if err != nil {
		return nil, err
	}
	cfg.override(flags)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newGenerator(cfg *Configuration, logger *log.Logger, showProgress bool) *generator.Generator {
	bopts := cfg.browserOptions()
	bopts.Logger = logger

	open := func(ctx context.Context) (generator.Capturer, error) {
		s, err := browser.Open(ctx, bopts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	gen := generator.New(cfg.generatorConfig(), open, logger)
	if showProgress {
		gen.SetObserver(progress.New(os.Stderr))
	}
	return gen
}

func generateOnce(ctx context.Context, cfg *Configuration, gen *generator.Generator) error {
	all, err := routes.LoadManifest(cfg.Routes, cfg.OutDir)
	if err != nil {
		return err
	}
	_, err = gen.Run(ctx, all)
	return err
}

func runGenerate(ctx context.Context, logger *log.Logger, flags RunFlags) error {
	cfg, err := resolveConfig(flags)
	if err != nil {
		return err
	}
	return generateOnce(ctx, cfg, newGenerator(cfg, logger, !flags.NoProgress))
}

func runWatch(ctx context.Context, logger *log.Logger, flags RunFlags, debounce time.Duration) error {
	cfg, err := resolveConfig(flags)
	if err != nil {
		return err
	}
	if cfg.Routes == "-" {
		return fmt.Errorf("watch needs a route manifest file, not stdin")
	}

	gen := newGenerator(cfg, logger, !flags.NoProgress)
	if err := generateOnce(ctx, cfg, gen); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Error("Initial generation failed", "err", err)
	}

	template := cfg.Template
	if template == "" {
		template = card.DefaultTemplatePath
	}
	w, err := watch.New([]string{cfg.Routes, template}, debounce, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	logger.Info("Watching for changes", "routes", cfg.Routes, "template", template)
	return w.Run(ctx, func(ctx context.Context) error {
		return generateOnce(ctx, cfg, gen)
	})
}
