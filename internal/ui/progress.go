package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/devinfo/internal/engine"
	"github.com/imamik/devinfo/internal/stack"
)

// ErrInterrupted is returned when the user quits the progress view before
// the run finished.
var ErrInterrupted = errors.New("interrupted")

// EventMsg carries one engine event into the progress view.
type EventMsg struct{ Event engine.Event }

// TickMsg is sent periodically to animate the spinner.
type TickMsg struct{}

// ErrMsg ends the view with an error.
type ErrMsg struct{ Err error }

// DoneMsg ends the view after a successful run.
type DoneMsg struct{}

type rowStatus int

const (
	rowActive rowStatus = iota
	rowCreated
	rowExists
	rowDeleted
	rowFailed
)

// resourceRow is one resource line of the progress view.
type resourceRow struct {
	URN      string
	Kind     stack.Kind
	ID       string
	Verb     string
	Status   rowStatus
	Duration time.Duration
	Err      error
}

// ProgressModel is the Bubble Tea model for an engine run.
type ProgressModel struct {
	Title string
	Rows  []resourceRow

	StartTime time.Time
	Elapsed   time.Duration
	// Finished is set once the engine reports the phase duration.
	Finished bool

	SpinnerFrame int

	Err         error
	Done        bool
	Interrupted bool
}

// NewProgressModel creates a model titled title, for example "up dev".
func NewProgressModel(title string) ProgressModel {
	return ProgressModel{Title: title, StartTime: time.Now()}
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Interrupted = true
			return m, tea.Quit
		}

	case EventMsg:
		m.apply(msg.Event)

	case TickMsg:
		m.SpinnerFrame++
		if !m.Finished {
			m.Elapsed = time.Since(m.StartTime)
		}
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *ProgressModel) apply(e engine.Event) {
	switch e.Type {
	case engine.EventResourceCreating:
		m.upsert(resourceRow{URN: e.URN, Kind: e.Kind, Verb: "creating", Status: rowActive})
	case engine.EventResourceDeleting:
		m.upsert(resourceRow{URN: e.URN, Kind: e.Kind, ID: e.ID, Verb: "deleting", Status: rowActive})
	case engine.EventResourceCreated:
		m.upsert(resourceRow{URN: e.URN, Kind: e.Kind, ID: e.ID, Verb: "created", Status: rowCreated, Duration: e.Duration})
	case engine.EventResourceExists:
		m.upsert(resourceRow{URN: e.URN, Kind: e.Kind, ID: e.ID, Verb: "exists", Status: rowExists})
	case engine.EventResourceDeleted:
		m.upsert(resourceRow{URN: e.URN, Kind: e.Kind, ID: e.ID, Verb: "deleted", Status: rowDeleted})
	case engine.EventResourceFailed:
		m.upsert(resourceRow{URN: e.URN, Kind: e.Kind, ID: e.ID, Verb: "failed", Status: rowFailed, Err: e.Err})
	case engine.EventPhaseCompleted:
		m.Elapsed = e.Duration
		m.Finished = true
	}
}

func (m *ProgressModel) upsert(row resourceRow) {
	for i := range m.Rows {
		if m.Rows[i].URN == row.URN {
			if row.ID == "" {
				row.ID = m.Rows[i].ID
			}
			m.Rows[i] = row
			return
		}
	}
	m.Rows = append(m.Rows, row)
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

var spinnerFrames = []string{"[.  ]", "[.. ]", "[...]", "[ ..]", "[  .]", "[   ]"}

func currentSpinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n", titleStyle.Render("devinfo "+m.Title), dimStyle.Render(formatDuration(m.Elapsed)))

	if len(m.Rows) == 0 {
		fmt.Fprintf(&b, "%s %s\n", dimStyle.Render(currentSpinner(m.SpinnerFrame)), dimStyle.Render("loading state"))
	}
	for _, row := range m.Rows {
		b.WriteString(m.renderRow(row))
		b.WriteByte('\n')
	}

	switch {
	case m.Err != nil:
		fmt.Fprintf(&b, "\n%s %v\n", deleteStyle.Render(crossMark), m.Err)
	case m.Interrupted:
		fmt.Fprintf(&b, "\n%s\n", updateStyle.Render("Interrupted, waiting for running operations to stop"))
	case m.Done:
		fmt.Fprintf(&b, "\n%s\n", titleStyle.Render(fmt.Sprintf("%s complete in %s", m.Title, formatDuration(m.Elapsed))))
	default:
		fmt.Fprintf(&b, "\n%s\n", dimStyle.Render("q: quit"))
	}
	return b.String()
}

func (m ProgressModel) renderRow(row resourceRow) string {
	var mark string
	switch row.Status {
	case rowActive:
		mark = dimStyle.Render(currentSpinner(m.SpinnerFrame))
	case rowCreated:
		mark = createStyle.Render(checkMark)
	case rowDeleted:
		mark = deleteStyle.Render(checkMark)
	case rowExists:
		mark = dimStyle.Render(sameMark)
	case rowFailed:
		mark = deleteStyle.Render(crossMark)
	}

	line := fmt.Sprintf("%s %-8s %s", mark, row.Verb, row.URN)
	if row.ID != "" {
		line += fmt.Sprintf(" (%s)", row.ID)
	}
	if row.Status == rowCreated {
		line += " " + dimStyle.Render(formatDuration(row.Duration))
	}
	if row.Err != nil {
		line += ": " + row.Err.Error()
	}
	return line
}

// RunProgress runs fn while a Bubble Tea view renders the events it
// reports through the observer. Quitting the view cancels fn's context;
// RunProgress still waits for fn to return and reports its error.
func RunProgress(ctx context.Context, title string, fn func(ctx context.Context, o engine.Observer) error, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewProgressModel(title), opts...)

	runErr := make(chan error, 1)
	go func() {
		err := fn(ctx, engine.ObserverFunc(func(e engine.Event) {
			p.Send(EventMsg{Event: e})
		}))
		if err != nil {
			p.Send(ErrMsg{Err: err})
		} else {
			p.Send(DoneMsg{})
		}
		runErr <- err
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-runErr
		return fmt.Errorf("TUI error: %w", err)
	}

	if fm, ok := final.(ProgressModel); ok && fm.Interrupted {
		cancel()
		if err := <-runErr; err != nil {
			return errors.Join(ErrInterrupted, err)
		}
		return ErrInterrupted
	}
	return <-runErr
}
