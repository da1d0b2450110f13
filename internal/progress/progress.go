package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/bubbles/progress"

	"github.com/go-scripts/ogcards/internal/types"
)

// Tracker shows a spinner with an overall progress bar while cards render
type Tracker struct {
	spinner   *spinner.Spinner
	bar       progress.Model
	total     int
	processed int
	current   string
	mu        sync.Mutex
}

// New creates a Tracker writing to w (stderr when nil)
func New(w io.Writer) *Tracker {
	if w == nil {
		w = os.Stderr
	}
	return &Tracker{
		spinner: spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

// OnStart is called once with the number of qualifying routes.
func (p *Tracker) OnStart(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.processed = 0
	p.spinner.Suffix = p.suffix()
	p.spinner.Start()
}

// OnRoute is called before a route is rendered.
func (p *Tracker) OnRoute(_ int, route types.Route) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = route.Pathname
	p.spinner.Suffix = p.suffix()
}

// OnCard is called after a route has been handled, written or skipped.
func (p *Tracker) OnCard(types.Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++
	p.spinner.Suffix = p.suffix()
}

// OnFinish stops the spinner.
func (p *Tracker) OnFinish(types.Report, error) {
	p.spinner.Stop()
}

// Percent returns the share of routes handled so far.
func (p *Tracker) Percent() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent()
}

func (p *Tracker) percent() float64 {
	if p.total == 0 {
		return 1
	}
	return float64(p.processed) / float64(p.total)
}

func (p *Tracker) suffix() string {
	s := fmt.Sprintf(" %s %d/%d", p.bar.ViewAs(p.percent()), p.processed, p.total)
	if p.current != "" {
		s += " " + p.current
	}
	return s
}
