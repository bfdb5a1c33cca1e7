package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/verdantlab/lettsim/internal/crop"
	"github.com/verdantlab/lettsim/internal/layout"
	"github.com/verdantlab/lettsim/internal/sim"
)

const (
	canvasCols = 58
	canvasRows = 22

	historyCap   = 600
	paramWindow  = 7
	discDots     = 1.8
	maxStepsTick = 288

	defaultStepsPerTick = 12
)

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// LiveConfig assembles everything the live view needs. StepsPerTick
// controls playback speed; zero means one simulated hour per tick at
// the default control interval.
type LiveConfig struct {
	Crop         *crop.Model
	Schedule     []sim.Frame
	PlotLength   float64
	PlotWidth    float64
	Seed         int64
	StepsPerTick int
	Title        string
}

// Model is the live cultivation view: a plan-view braille canvas of
// the stand on the left, growth figures and tunable coefficients on
// the right.
type Model struct {
	crop         *crop.Model
	schedule     []sim.Frame
	idx          int
	stepsPerTick int

	canvas       *Canvas
	plotL, plotW float64
	seed         int64
	stand        layout.Frame
	standGround  float64
	standDay     int

	dwHist        []float64
	initialParams crop.ParamSet
	paramKeys     []string
	selected      int

	running  bool
	done     bool
	showHelp bool
	title    string
}

func NewModel(cfg LiveConfig) Model {
	initial := cfg.Crop.Params().Clone()
	keys := make([]string, 0, len(initial))
	for k := range initial {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	steps := cfg.StepsPerTick
	if steps < 1 {
		steps = defaultStepsPerTick
	}
	title := cfg.Title
	if title == "" {
		title = "lettuce stand"
	}

	m := Model{
		crop:          cfg.Crop,
		schedule:      cfg.Schedule,
		stepsPerTick:  steps,
		canvas:        NewCanvas(canvasCols, canvasRows),
		plotL:         cfg.PlotLength,
		plotW:         cfg.PlotWidth,
		seed:          cfg.Seed,
		dwHist:        make([]float64, 0, historyCap),
		initialParams: initial,
		paramKeys:     keys,
		running:       true,
		title:         title,
	}
	m.rebuildStand(0)
	return m
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles input events and advances the simulation on ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.replant()
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "+", "=":
			if m.stepsPerTick*2 <= maxStepsTick {
				m.stepsPerTick *= 2
			}
		case "-", "_":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && !m.done {
			m.step()
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m *Model) step() {
	for i := 0; i < m.stepsPerTick; i++ {
		if m.idx >= len(m.schedule) {
			m.done = true
			m.running = false
			return
		}
		fr := m.schedule[m.idx]
		if day := fr.Hour / 24; day != m.standDay {
			m.rebuildStand(day)
		}
		m.crop.Step(fr.U)
		m.idx++

		m.dwHist = append(m.dwHist, m.crop.TotalDryWeight())
		if len(m.dwHist) > historyCap {
			m.dwHist = m.dwHist[1:]
		}
	}
}

// rebuildStand regenerates the planting frame for a new day. The
// generator is reseeded identically each time, so plants keep their
// position and jitter while the dry-weight scale advances.
func (m *Model) rebuildStand(day int) {
	gen := layout.NewGenerator(m.plotL, m.plotW, m.seed)
	dw := m.crop.TotalDryWeight()
	m.stand = gen.Frame(dw, m.crop.Density(), m.idx, day)
	m.standGround = layout.GroundScale(dw)
	m.standDay = day
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.crop.Params()[key] * factor
	_ = m.crop.UpdateParameters(crop.ParamSet{key: val})
}

// replant restores the initial state and coefficient set and starts
// the schedule over.
func (m *Model) replant() {
	m.crop.Reset()
	_ = m.crop.UpdateParameters(m.initialParams)
	m.idx = 0
	m.dwHist = m.dwHist[:0]
	m.done = false
	m.running = true
	m.rebuildStand(0)
}

func (m *Model) climate() (temp, rad, co2 float64) {
	if len(m.schedule) == 0 {
		return 0, 0, 0
	}
	i := m.idx - 1
	if i < 0 {
		i = 0
	}
	u := m.schedule[i].U
	if len(u) < 3 {
		return 0, 0, 0
	}
	return u[0], u[1], u[2]
}

func (m *Model) draw() {
	m.canvas.Clear()
	w, h := m.canvas.Width(), m.canvas.Height()
	m.canvas.DrawLine(0, 0, w-1, 0)
	m.canvas.DrawLine(0, h-1, w-1, h-1)
	m.canvas.DrawLine(0, 0, 0, h-1)
	m.canvas.DrawLine(w-1, 0, w-1, h-1)

	if m.plotL <= 0 || m.plotW <= 0 {
		return
	}
	ground := layout.GroundScale(m.crop.TotalDryWeight())
	for _, p := range m.stand.Lettuces {
		fx := (p.Position.X + m.plotL/2) / m.plotL
		fz := (p.Position.Z + m.plotW/2) / m.plotW
		x := 2 + int(fx*float64(w-5))
		y := 2 + int(fz*float64(h-5))

		jitter := 1.0
		if m.standGround > 0 {
			jitter = p.Scale / m.standGround
		}
		r := int(math.Round(ground * jitter * discDots))
		m.canvas.FillDisc(x, y, r)
	}
}

// View renders the TUI.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	status := statusRunning.Render("GROWING")
	if m.done {
		status = statusDone.Render("HARVEST READY")
	} else if !m.running {
		status = statusPaused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	if len(m.dwHist) > 1 {
		chart := asciigraph.Plot(m.dwHist,
			asciigraph.Height(5), asciigraph.Width(34),
			asciigraph.Caption("dry weight g/plant"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	hours := int(m.crop.Elapsed().Hours())
	s.WriteString(labelStyle.Render("Day") + valueStyle.Render(fmt.Sprintf("%d  %02d:00", hours/24, hours%24)) + "\n")
	x0, x1 := m.crop.State()
	s.WriteString(labelStyle.Render("Dry weight") + valueStyle.Render(fmt.Sprintf("%.3f g", m.crop.TotalDryWeight())) + "\n")
	s.WriteString(labelStyle.Render("Assimilate") + valueStyle.Render(fmt.Sprintf("%.4f g", x0)) + "\n")
	s.WriteString(labelStyle.Render("Structural") + valueStyle.Render(fmt.Sprintf("%.4f g", x1)) + "\n")
	s.WriteString(labelStyle.Render("LAI") + valueStyle.Render(fmt.Sprintf("%.2f", m.crop.LeafAreaIndex())) + "\n")
	closure := m.crop.CanopyClosure()
	s.WriteString(labelStyle.Render("Closure") + valueStyle.Render(fmt.Sprintf("%s %3.0f%%", progressBar(closure, 12), closure*100)) + "\n")
	temp, rad, co2 := m.climate()
	s.WriteString(labelStyle.Render("Climate") + valueStyle.Render(fmt.Sprintf("%.1fC  %.0f W/m2  %.0f ppm", temp, rad, co2)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%d steps/tick", m.stepsPerTick)) + "\n")

	s.WriteString("\nCOEFFICIENTS\n")
	s.WriteString(m.paramLines())

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Replant Q:Quit\nTab:Select ↑↓:Tune +/-:Speed ?:Help"))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

func (m *Model) paramLines() string {
	if len(m.paramKeys) == 0 {
		return labelStyle.Render("  (none)") + "\n"
	}

	start := m.selected - paramWindow/2
	if start > len(m.paramKeys)-paramWindow {
		start = len(m.paramKeys) - paramWindow
	}
	if start < 0 {
		start = 0
	}
	end := start + paramWindow
	if end > len(m.paramKeys) {
		end = len(m.paramKeys)
	}

	params := m.crop.Params()
	var s strings.Builder
	if start > 0 {
		s.WriteString(helpStyle.Render("  ...") + "\n")
	}
	for i := start; i < end; i++ {
		k := m.paramKeys[i]
		val, initial := params[k], m.initialParams[k]
		if initial == 0 {
			initial = 1e-6
		}
		ratio := val / (2 * initial)
		if ratio > 1 {
			ratio = 1
		} else if ratio < 0 {
			ratio = 0
		}
		barWidth := 10
		filled := int(ratio * float64(barWidth))
		bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"
		line := fmt.Sprintf("%-12s %s %.3g", k, bar, val)
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}
	if end < len(m.paramKeys) {
		s.WriteString(helpStyle.Render("  ...") + "\n")
	}
	return s.String()
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Replant (start over)     ║
║  Q        - Quit                     ║
║  Tab      - Select coefficient       ║
║  Up/K     - Increase value (+5%)     ║
║  Down/J   - Decrease value (-5%)     ║
║  +/-      - Playback speed           ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run starts the live view on the alternate screen and blocks until
// the user quits.
func Run(cfg LiveConfig) error {
	_, err := tea.NewProgram(NewModel(cfg), tea.WithAltScreen()).Run()
	return err
}
