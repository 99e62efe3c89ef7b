package report

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
)

const maxBarWidth = 50

type hashProgressMsg struct {
	done  int
	total int
}

type hashDoneMsg struct{}

// progressModel draws a single hashing progress line.
type progressModel struct {
	bar   progress.Model
	done  int
	total int
}

func newProgressModel(profile termenv.Profile) progressModel {
	return progressModel{
		bar: progress.New(
			progress.WithGradient(ProgressStart, ProgressEnd),
			progress.WithWidth(maxBarWidth),
			progress.WithColorProfile(profile),
		),
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case hashProgressMsg:
		if msg.done > m.done {
			m.done = msg.done
		}
		m.total = msg.total
	case hashDoneMsg:
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.bar.Width = max(10, min(maxBarWidth, msg.Width-30))
	}
	return m, nil
}

func (m progressModel) View() string {
	var pct float64
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}
	return fmt.Sprintf("Hashing %s %d/%d pieces\n", m.bar.ViewAs(pct), m.done, m.total)
}

// HashProgress shows hashing progress on a terminal. A nil *HashProgress
// is valid and does nothing.
type HashProgress struct {
	program *tea.Program
	exited  chan struct{}
	lastPct atomic.Int64
	stop    sync.Once
}

// StartHashProgress starts drawing to out. It returns nil when out is not a
// terminal.
func StartHashProgress(out io.Writer) *HashProgress {
	if !IsTerminal(out) {
		return nil
	}
	p := &HashProgress{exited: make(chan struct{})}
	p.lastPct.Store(-1)
	p.program = tea.NewProgram(
		newProgressModel(ColorProfile(out)),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	go func() {
		defer close(p.exited)
		_, _ = p.program.Run()
	}()
	return p
}

// Update records that done of total pieces are hashed. It is safe for
// concurrent use and only forwards whole-percent changes.
func (p *HashProgress) Update(done, total int) {
	if p == nil || total <= 0 {
		return
	}
	pct := int64(done * 100 / total)
	for {
		last := p.lastPct.Load()
		if pct <= last {
			return
		}
		if p.lastPct.CompareAndSwap(last, pct) {
			break
		}
	}
	p.program.Send(hashProgressMsg{done: done, total: total})
}

// Stop draws the final state and waits for the renderer to exit.
func (p *HashProgress) Stop() {
	if p == nil {
		return
	}
	p.stop.Do(func() {
		p.program.Send(hashDoneMsg{})
		<-p.exited
	})
}
