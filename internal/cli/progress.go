package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// barWidth is the number of cells in the progress bar.
const barWidth = 30

// =============================================================================
// progressModel - Tile placement progress
// =============================================================================

type tilePlacedMsg struct {
	done, total int
}

type progressDoneMsg struct{}

// progressModel is the bubbletea model that renders composition progress.
type progressModel struct {
	label    string
	done     int
	total    int
	start    time.Time
	finished bool
}

func newProgressModel(label string, total int) progressModel {
	return progressModel{label: label, total: total, start: time.Now()}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tilePlacedMsg:
		m.done, m.total = msg.done, msg.total
	case progressDoneMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.finished {
		return ""
	}
	filled := 0
	if m.total > 0 {
		filled = m.done * barWidth / m.total
	}
	bar := styleBarFilled.Render(strings.Repeat("█", filled)) +
		styleBarEmpty.Render(strings.Repeat("░", barWidth-filled))
	elapsed := time.Since(m.start).Round(100 * time.Millisecond)
	return fmt.Sprintf("%s %s %s %s",
		StyleDim.Render(m.label),
		bar,
		StyleNumber.Render(fmt.Sprintf("%d/%d", m.done, m.total)),
		StyleDim.Render(elapsed.String()))
}

// =============================================================================
// progressUI - Program lifecycle
// =============================================================================

// progressUI runs a progressModel in the background.
// update may be called from any goroutine; finish blocks until the view is
// torn down and is safe to call more than once.
type progressUI struct {
	program *tea.Program
	exited  chan struct{}
	once    sync.Once
}

func startProgressUI(w io.Writer, label string, total int) *progressUI {
	p := tea.NewProgram(newProgressModel(label, total),
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	ui := &progressUI{program: p, exited: make(chan struct{})}
	go func() {
		defer close(ui.exited)
		_, _ = p.Run()
	}()
	return ui
}

func (u *progressUI) update(done, total int) {
	u.program.Send(tilePlacedMsg{done: done, total: total})
}

func (u *progressUI) finish() {
	u.once.Do(func() {
		u.program.Send(progressDoneMsg{})
		<-u.exited
	})
}

// interactive reports whether animated output should be drawn on f.
func interactive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
