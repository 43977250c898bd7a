package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/galpot/internal/pipeline"
	"github.com/san-kum/galpot/internal/render"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

type view int

const (
	viewProfile view = iota
	viewDensity
	viewPotential
)

func (v view) String() string {
	switch v {
	case viewDensity:
		return "density"
	case viewPotential:
		return "potential"
	default:
		return "profile"
	}
}

// Model browses the figures of one pipeline result.
type Model struct {
	res           *pipeline.Result
	views         []view
	current       int
	theme         int
	styles        styles
	width, height int
	showHelp      bool
}

func NewModel(res *pipeline.Result) Model {
	views := []view{viewProfile, viewDensity}
	if res.HasPotential() {
		views = append(views, viewPotential)
	}
	return Model{
		res:    res,
		views:  views,
		styles: newStyles(themes[0]),
		width:  defaultWidth,
		height: defaultHeight,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.current = (m.current + 1) % len(m.views)
		case "shift+tab", "left", "h":
			m.current = (m.current + len(m.views) - 1) % len(m.views)
		case "t":
			m.theme = (m.theme + 1) % len(themes)
			m.styles = newStyles(themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

// Current names the view on screen.
func (m Model) Current() string { return m.views[m.current].String() }

// Theme names the active theme.
func (m Model) Theme() string { return themes[m.theme].Name }

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(m.styles.header.Render(strings.ToUpper(m.res.Config.Name)) + "\n")

	tabs := make([]string, len(m.views))
	for i, v := range m.views {
		if i == m.current {
			tabs[i] = m.styles.active.Render(v.String())
		} else {
			tabs[i] = m.styles.tab.Render(v.String())
		}
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n\n")

	figure := m.styles.panel.Render(m.figure())
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, figure, m.stats()))

	if m.showHelp {
		s.WriteString(m.styles.help.Render("\ntab/→ next view   shift+tab/← previous view\nt     cycle theme  ?  toggle help  q  quit"))
	} else {
		s.WriteString(m.styles.help.Render("\ntab:View  t:Theme  ?:Help  q:Quit"))
	}
	return s.String()
}

func (m Model) figure() string {
	switch m.views[m.current] {
	case viewDensity:
		return render.FieldANSI(m.res.Density, m.fieldCols())
	case viewPotential:
		return render.FieldANSI(m.res.Potential, m.fieldCols())
	default:
		w := m.width - 50
		if w < 20 {
			w = 20
		}
		h := m.height - 14
		if h < 5 {
			h = 5
		}
		return render.ProfileASCII(m.res.Curves, w, h)
	}
}

// fieldCols fits two-character cells beside the stats panel.
func (m Model) fieldCols() int {
	cols := (m.width - 40) / 2
	if rows := m.height - 10; rows < cols {
		cols = rows
	}
	if cols < 8 {
		cols = 8
	}
	return cols
}

func (m Model) stats() string {
	cfg := m.res.Config
	rows := [][2]string{
		{"grid", fmt.Sprintf("%dx%d", m.res.Grid.Resolution, m.res.Grid.Resolution)},
		{"half width", fmt.Sprintf("%g kpc", cfg.Grid.PixelAxisSize*cfg.Grid.ScaleKpc)},
		{"sersic n", fmt.Sprintf("%g", cfg.Bulge.SersicIndex)},
		{"nu", fmt.Sprintf("%.4f", m.res.Nu)},
		{"stars", fmt.Sprintf("%.3g", cfg.Stars.Count)},
		{"peak density", fmt.Sprintf("%.4g kg", m.res.Density.Max())},
		{"total mass", fmt.Sprintf("%.4g kg", m.res.Density.Sum()/float64(m.res.Grid.Resolution))},
	}
	if m.res.HasPotential() {
		rows = append(rows,
			[2]string{"method", m.res.Method},
			[2]string{"deepest phi", fmt.Sprintf("%.4g J/kg", m.res.Potential.Min())},
			[2]string{"potential in", m.res.Timings["potential"].String()},
		)
	}
	rows = append(rows, [2]string{"elapsed", m.res.Elapsed.String()})

	var s strings.Builder
	for _, r := range rows {
		s.WriteString(m.styles.label.Render(r[0]) + m.styles.value.Render(r[1]) + "\n")
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(s.String())
}

// Run opens the viewer on res and blocks until the user quits.
func Run(res *pipeline.Result) error {
	_, err := tea.NewProgram(NewModel(res), tea.WithAltScreen()).Run()
	return err
}
