// Package render prints phase announcements and request confirmations to
// the operator console.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/bft-labs/trafficd/internal/control"
	"github.com/bft-labs/trafficd/internal/domain"
)

// TimeFormat is the timestamp layout that prefixes every console line.
const TimeFormat = "15:04:05"

// Console writes one line per phase commit and per operator request.
// It is safe for concurrent use by the controller and the input listener.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time

	color  bool
	styles map[domain.Indication]lipgloss.Style
	walk   lipgloss.Style
	muted  lipgloss.Style
}

// NewConsole creates a console renderer writing to out. Colors are applied
// only when color is true, even if out is not a terminal.
func NewConsole(out io.Writer, color bool) *Console {
	r := lipgloss.NewRenderer(out)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	}
	return &Console{
		out:   out,
		now:   time.Now,
		color: color,
		styles: map[domain.Indication]lipgloss.Style{
			domain.IndicationRed:         r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			domain.IndicationYellow:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
			domain.IndicationGreen:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
			domain.IndicationFlashingRed: r.NewStyle().Bold(true).Blink(true).Foreground(lipgloss.Color("9")),
			domain.IndicationOff:         r.NewStyle().Foreground(lipgloss.Color("244")),
		},
		walk:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("28")),
		muted: r.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// ColorSupported reports whether f is a terminal that should receive colored
// output. NO_COLOR disables colors regardless of the terminal.
func ColorSupported(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Help prints the key bindings.
func (c *Console) Help() {
	c.println(c.paint(c.muted, "keys: n = pedestrian north-south, e = pedestrian east-west, s = toggle emergency, q = quit"))
}

// OnPhaseChange implements control.Observer.
func (c *Console) OnPhaseChange(change control.PhaseChange) {
	c.println(c.stamp(change.At) + " " + c.PhaseLine(change.Current))
}

// OnRequest implements control.RequestObserver.
func (c *Console) OnRequest(req control.Request) {
	var msg string
	switch req.Command {
	case control.CommandPedestrianNS, control.CommandPedestrianEW:
		dir := domain.DirectionNS
		if req.Command == control.CommandPedestrianEW {
			dir = domain.DirectionEW
		}
		if req.Accepted {
			msg = fmt.Sprintf("pedestrian request registered: %s", dir)
		} else {
			msg = fmt.Sprintf("pedestrian request ignored during emergency: %s", dir)
		}
	case control.CommandToggleEmergency:
		if req.EmergencyActive {
			msg = "emergency clear requested"
		} else {
			msg = "emergency mode requested"
		}
	case control.CommandQuit:
		msg = "shutting down"
	default:
		return
	}
	c.println(c.stamp(c.now()) + " " + c.paint(c.muted, msg))
}

// PhaseLine returns the signal heads displayed during p, for example
// "NS GREEN | EW RED".
func (c *Console) PhaseLine(p domain.Phase) string {
	if p == domain.PhaseInit {
		return "INITIALIZING | NS " + c.head(domain.IndicationOff) + " | EW " + c.head(domain.IndicationOff)
	}

	s := p.Signals()
	parts := []string{
		"NS " + c.head(s.NorthSouth),
		"EW " + c.head(s.EastWest),
	}
	if s.Walk {
		parts = append(parts, c.paint(c.walk, "WALK"))
	}
	if p == domain.PhaseEmergency {
		parts = append([]string{"EMERGENCY"}, parts...)
	}
	return strings.Join(parts, " | ")
}

func (c *Console) head(i domain.Indication) string {
	return c.paint(c.styles[i], i.String())
}

func (c *Console) paint(style lipgloss.Style, s string) string {
	if !c.color {
		return s
	}
	return style.Render(s)
}

func (c *Console) stamp(t time.Time) string {
	return "[" + t.Format(TimeFormat) + "]"
}

func (c *Console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, line+"\n")
}

var (
	_ control.Observer        = (*Console)(nil)
	_ control.RequestObserver = (*Console)(nil)
)
