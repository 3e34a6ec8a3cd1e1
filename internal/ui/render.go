package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/imamik/devinfo/internal/engine"
)

// Printer writes styled text to w.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewPrinter returns a Printer for w. Styling is enabled when w is a
// terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: IsTerminal(w)}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *Printer) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, line)
}

// Plan renders a preview.
func (p *Printer) Plan(plan *engine.Plan) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", p.style(titleStyle, "Stack "+plan.Stack))

	for _, step := range plan.Steps {
		symbol, st := actionSymbol(step.Action)
		fmt.Fprintf(&b, "%s %s %s\n",
			p.style(st, symbol),
			p.style(keyStyle, fmt.Sprintf("%-9s", step.Kind)),
			step.Name,
		)
		switch step.Action {
		case engine.ActionCreate:
			for _, prop := range step.Properties {
				fmt.Fprintf(&b, "      %s: %s\n", prop.Name, p.value(prop.Value, prop.Known))
			}
		case engine.ActionUpdate:
			for _, c := range step.Changes {
				fmt.Fprintf(&b, "      %s: %s => %s", c.Property, quoteOrNone(c.Old), quoteOrNone(c.New))
				if c.Immutable {
					fmt.Fprintf(&b, " %s", p.style(deleteStyle, "(requires destroy)"))
				}
				b.WriteString("\n")
			}
		}
	}

	if len(plan.Exports) > 0 {
		fmt.Fprintf(&b, "\n%s\n", p.style(sectionStyle, "Outputs"))
		for _, exp := range plan.Exports {
			fmt.Fprintf(&b, "  %-16s %s\n", exp.Name, p.value(exp.Value, exp.Known))
		}
	}

	fmt.Fprintf(&b, "\n%s", p.summary(plan))
	p.println(b.String())
}

func (p *Printer) summary(plan *engine.Plan) string {
	if !plan.HasChanges() {
		return p.style(dimStyle, "No changes. Infrastructure matches the configuration.")
	}
	parts := []string{
		p.style(createStyle, fmt.Sprintf("%d to create", plan.Count(engine.ActionCreate))),
		p.style(updateStyle, fmt.Sprintf("%d to update", plan.Count(engine.ActionUpdate))),
		p.style(deleteStyle, fmt.Sprintf("%d to delete", plan.Count(engine.ActionDelete))),
		fmt.Sprintf("%d unchanged", plan.Count(engine.ActionSame)),
	}
	return "Resources: " + strings.Join(parts, ", ")
}

func (p *Printer) value(v string, known bool) string {
	if !known {
		return p.style(dimStyle, v)
	}
	return fmt.Sprintf("%q", v)
}

func quoteOrNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return fmt.Sprintf("%q", v)
}

func actionSymbol(a engine.Action) (string, lipgloss.Style) {
	switch a {
	case engine.ActionCreate:
		return symbolCreate, createStyle
	case engine.ActionUpdate:
		return symbolUpdate, updateStyle
	case engine.ActionDelete:
		return symbolDelete, deleteStyle
	default:
		return symbolSame, dimStyle
	}
}

// Outputs renders stack exports sorted by name.
func (p *Printer) Outputs(outputs map[string]string) {
	names := make([]string, 0, len(outputs))
	width := 0
	for name := range outputs {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(p.style(sectionStyle, "Outputs"))
	for _, name := range names {
		fmt.Fprintf(&b, "\n  %s  %s", p.style(keyStyle, fmt.Sprintf("%-*s", width, name)), outputs[name])
	}
	p.println(b.String())
}

// Event renders one engine event as a progress line. It implements
// engine.Observer.
func (p *Printer) Event(e engine.Event) {
	var line string
	switch e.Type {
	case engine.EventResourceCreating:
		line = fmt.Sprintf("%s creating %s", p.style(dimStyle, spinner), e.URN)
	case engine.EventResourceCreated:
		line = fmt.Sprintf("%s created  %s (%s) %s", p.style(createStyle, checkMark), e.URN, e.ID, p.style(dimStyle, formatDuration(e.Duration)))
	case engine.EventResourceExists:
		line = fmt.Sprintf("%s exists   %s (%s)", p.style(dimStyle, sameMark), e.URN, e.ID)
	case engine.EventResourceDeleting:
		line = fmt.Sprintf("%s deleting %s (%s)", p.style(dimStyle, spinner), e.URN, e.ID)
	case engine.EventResourceDeleted:
		line = fmt.Sprintf("%s deleted  %s", p.style(deleteStyle, checkMark), e.URN)
	case engine.EventResourceFailed:
		line = fmt.Sprintf("%s failed   %s: %v", p.style(deleteStyle, crossMark), e.URN, e.Err)
	case engine.EventPhaseCompleted:
		line = p.style(titleStyle, fmt.Sprintf("%s complete in %s", e.Phase, formatDuration(e.Duration)))
	default:
		return
	}
	p.println(line)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
