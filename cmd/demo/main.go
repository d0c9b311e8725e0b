package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/1F47E/geo-cluster/pkg/cluster"
	"github.com/1F47E/geo-cluster/pkg/config"
	"github.com/1F47E/geo-cluster/pkg/dataset"
	"github.com/1F47E/geo-cluster/pkg/geo"
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	statStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9"))
)

type stage int

const (
	stageLoading stage = iota
	stageExploring
	stageFailed
)

type progressMsg float64

type statusMsg string

type loadedMsg struct {
	engine   *cluster.Engine[models.Properties]
	points   int
	duration time.Duration
}

type errMsg struct{ err error }

type model struct {
	stage    stage
	spinner  spinner.Model
	progress progress.Model
	percent  float64
	status   string
	err      error

	engine   *cluster.Engine[models.Properties]
	points   int
	loadTime time.Duration

	view        view
	home        view
	annotations []cluster.Annotation[models.Properties]
	queryTime   time.Duration
	width       int
	height      int
}

func initialModel(cfg *config.Config) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	home := view{
		center:    geo.WebMercator{WorldSize: cfg.Map.WorldSize}.ToMapPoint(models.Location{Lat: 40, Lon: -30}),
		zoom:      3,
		cols:      80,
		rows:      20,
		worldSize: cfg.Map.WorldSize,
		tileSize:  cfg.Map.TileSize,
	}

	return model{
		stage:    stageLoading,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
		status:   "Loading points...",
		view:     home,
		home:     home,
		width:    80,
		height:   24,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.progress.Width = msg.Width - 10
		m.view.cols = max(msg.Width-4, 10)
		m.view.rows = max(msg.Height-9, 5)
		m.home.cols, m.home.rows = m.view.cols, m.view.rows
		return m.refresh(), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		if m.stage != stageExploring {
			return m, nil
		}
		switch msg.String() {
		case "left", "h":
			m.view = m.view.pan(-0.25, 0)
		case "right", "l":
			m.view = m.view.pan(0.25, 0)
		case "up", "k":
			m.view = m.view.pan(0, -0.25)
		case "down", "j":
			m.view = m.view.pan(0, 0.25)
		case "+", "=":
			m.view = m.view.zoomBy(1)
		case "-", "_":
			m.view = m.view.zoomBy(-1)
		case "r":
			m.view = m.home
		default:
			return m, nil
		}
		return m.refresh(), nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		m.percent = float64(msg)
		return m, m.progress.SetPercent(float64(msg))

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case loadedMsg:
		m.stage = stageExploring
		m.engine = msg.engine
		m.points = msg.points
		m.loadTime = msg.duration
		return m.refresh(), nil

	case errMsg:
		m.stage = stageFailed
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

// refresh re-runs the clustering for the current view.
func (m model) refresh() model {
	if m.engine == nil {
		return m
	}
	start := time.Now()
	m.annotations = m.engine.ClusteredAnnotations(m.view.rect(), m.view.scale())
	m.queryTime = time.Since(start)
	return m
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🌍 Geo Cluster Explorer"))
	b.WriteString("\n\n")

	switch m.stage {
	case stageLoading:
		b.WriteString(m.spinner.View() + " " + m.status + "\n\n")
		b.WriteString(m.progress.ViewAs(m.percent))

	case stageFailed:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))

	case stageExploring:
		grid := plot(m.annotations, m.engine.Options().Projection, m.view)
		b.WriteString(boxStyle.Render(renderGrid(grid)))
		b.WriteString("\n")
		b.WriteString(m.statusLine())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("arrows/hjkl pan • +/- zoom • r reset • q quit"))
	return b.String()
}

func (m model) statusLine() string {
	clusters, total := 0, 0
	for _, a := range m.annotations {
		total += a.Count
		if a.IsCluster() {
			clusters++
		}
	}
	center := m.engine.Options().Projection.ToGeographic(m.view.center)
	opts := m.engine.Options()
	level := cluster.ZoomLevel(m.view.scale(), opts.WorldSize, opts.TileSize)

	return fmt.Sprintf("%s zoom %s  cell %s  center %s  markers %s (%s clusters)  visible %s/%s  query %s",
		subtitleStyle.Render("▸"),
		statStyle.Render(fmt.Sprint(level)),
		statStyle.Render(fmt.Sprintf("%.0fpx", cluster.CellSizeFor(level))),
		statStyle.Render(fmt.Sprintf("%.2f,%.2f", center.Lat, center.Lon)),
		statStyle.Render(fmt.Sprint(len(m.annotations))),
		statStyle.Render(fmt.Sprint(clusters)),
		statStyle.Render(fmt.Sprint(total)),
		statStyle.Render(fmt.Sprint(m.points)),
		statStyle.Render(m.queryTime.Round(time.Microsecond).String()),
	)
}

var program *tea.Program

// load reads the snapshot, or generates points when there is none, and
// builds the engine, reporting progress to the program.
func load(cfg *config.Config, generate int) {
	start := time.Now()

	var points []*models.Point
	if _, err := os.Stat(cfg.Dataset.Path); err == nil {
		program.Send(statusMsg("Loading " + cfg.Dataset.Path + "..."))
		program.Send(progressMsg(0.1))
		points, err = dataset.Load(cfg.Dataset.Path)
		if err != nil {
			program.Send(errMsg{err})
			return
		}
	} else {
		program.Send(statusMsg(fmt.Sprintf("Generating %d random points...", generate)))
		program.Send(progressMsg(0.1))
		points = dataset.GenerateRegions(generate, 0, time.Now().UnixNano())
	}
	program.Send(progressMsg(0.5))

	opts, err := cfg.EngineOptions()
	if err != nil {
		program.Send(errMsg{err})
		return
	}
	engine, err := cluster.NewEngine[models.Properties](opts)
	if err != nil {
		program.Send(errMsg{err})
		return
	}

	program.Send(statusMsg(fmt.Sprintf("Building %s index over %d points...", opts.Backend, len(points))))
	if err := engine.BuildTree(dataset.ToQuadtree(points)); err != nil {
		program.Send(errMsg{err})
		return
	}
	program.Send(progressMsg(1))

	program.Send(loadedMsg{engine: engine, points: engine.Len(), duration: time.Since(start)})
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		// fall back to the example shipped with the repository
		if _, err := os.Stat("config.yaml.example"); err == nil {
			path = "config.yaml.example"
		}
	}
	return config.Load(path)
}

func main() {
	var (
		configFile = flag.String("config", "config.yaml", "Config file path")
		file       = flag.String("file", "", "Dataset snapshot path (overrides dataset.path)")
		backend    = flag.String("backend", "", "Index backend: quadtree or rtree")
		generate   = flag.Int("points", 200000, "Number of random points when no snapshot exists")
	)
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *file != "" {
		cfg.Dataset.Path = *file
	}
	if *backend != "" {
		cfg.Index.Backend = *backend
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	program = tea.NewProgram(initialModel(cfg), tea.WithAltScreen())
	go load(cfg, *generate)

	if _, err := program.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
