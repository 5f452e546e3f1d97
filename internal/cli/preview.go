package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scrolly/pkg/article"
	"github.com/matzehuels/scrolly/pkg/chart"
	"github.com/matzehuels/scrolly/pkg/chart/housing"
	"github.com/matzehuels/scrolly/pkg/chart/lifeexp"
	"github.com/matzehuels/scrolly/pkg/scene"
)

// A terminal cell stands in for this many pixels when the preview reports
// its size to the page.
const (
	cellWidth  = 8
	cellHeight = 16
)

func (c *CLI) previewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Scroll through the article in the terminal",
		Long: `Preview mounts the article and draws it in the terminal. Each key press
moves to the next or previous section and triggers its step, the same way
scrolling does in a browser.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context())
		},
	}
}

func (c *CLI) runPreview(ctx context.Context) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	store, err := c.newCache(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer store.Close()

	spin := newSpinner(ctx, "Loading datasets...")
	spin.Start()
	data, err := c.loadDatasets(ctx, cfg, store)
	spin.Stop()
	if err != nil {
		return err
	}

	debounce := cfg.Layout.Debounce.Std()
	page, err := data.NewPage(
		chart.Size{Width: float64(cfg.Layout.Width), Height: float64(cfg.Layout.Height)},
		// Log lines would tear the alternate screen.
		chart.WithLogger(log.NewWithOptions(io.Discard, log.Options{})),
		chart.WithDebounce(debounce),
	)
	if err != nil {
		return err
	}
	defer page.Close()
	page.Mount(ctx)

	_, err = tea.NewProgram(newPreviewModel(page, debounce), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// previewModel - the article as a bubbletea program
// =============================================================================

var (
	previewTextStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
	previewHelpStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// redrawMsg asks for a repaint once a debounced relayout has run.
type redrawMsg struct{}

type previewModel struct {
	page     *article.Page
	index    int
	width    int
	height   int
	debounce time.Duration
	err      error
}

func newPreviewModel(page *article.Page, debounce time.Duration) previewModel {
	m := previewModel{page: page, width: 80, height: 24, debounce: debounce}
	if sections := page.Sections(); len(sections) > 0 {
		m.err = page.Trigger(sections[0].Step)
	}
	return m
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		last := len(m.page.Sections()) - 1
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "down", "j", " ", "pgdown":
			return m.moveTo(min(m.index+1, last)), nil
		case "up", "k", "pgup":
			return m.moveTo(max(m.index-1, 0)), nil
		case "home", "g":
			return m.moveTo(0), nil
		case "end", "G":
			return m.moveTo(last), nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.page.Resize(chart.Size{
			Width:  float64(msg.Width * cellWidth),
			Height: float64(msg.Height * cellHeight),
		})
		return m, tea.Tick(m.debounce+50*time.Millisecond, func(time.Time) tea.Msg { return redrawMsg{} })

	case redrawMsg:
		return m, nil
	}
	return m, nil
}

func (m previewModel) moveTo(i int) previewModel {
	if i == m.index || i < 0 {
		return m
	}
	m.index = i
	m.err = m.page.Trigger(m.page.Sections()[i].Step)
	return m
}

func (m previewModel) View() string {
	sections := m.page.Sections()
	if len(sections) == 0 {
		return ""
	}
	sec := sections[m.index]

	var b strings.Builder
	b.WriteString(StyleTitle.Render(article.Title))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d/%d · %s · %s", m.index+1, len(sections), sec.Chart, sec.Step)))
	b.WriteString("\n\n")

	b.WriteString(m.figure(sec.Chart))
	b.WriteString("\n\n")

	b.WriteString(previewTextStyle.Width(min(max(m.width-4, 20), 72)).Render(sec.Text))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(StyleWarning.Render(m.err.Error()) + "\n")
	}
	b.WriteString(previewHelpStyle.Render("↓/j next · ↑/k back · q quit"))
	return b.String()
}

// plotRows is the height left for the figure after the header, narrative
// box and help line.
func (m previewModel) plotRows() int {
	return max(m.height-12, 6)
}

func (m previewModel) figure(name string) string {
	c, err := m.page.Chart(name)
	if err != nil {
		return StyleWarning.Render(err.Error())
	}
	if c.State() != chart.StateRendered {
		msg := fmt.Sprintf("%s is %s", c.Definition().Title, c.State())
		if err := c.Err(); err != nil {
			msg += ": " + err.Error()
		}
		return StyleWarning.Render(msg)
	}

	switch name {
	case lifeexp.Name:
		return m.barFigure(c)
	case housing.Name:
		return m.lineFigure(c)
	}
	return ""
}

type barCell struct {
	height float64
	fill   string
}

// barFigure draws the bars as block columns. Neighbouring bars share a
// column when there are more bars than cells; a highlighted bar wins the
// column's colour.
func (m previewModel) barFigure(c *chart.Chart) string {
	var bars []barCell
	var plotH float64
	c.View(func(s *scene.Scene) {
		s.SelectAll(scene.OfKind(scene.KindRect)).Each(func(e *scene.Element) {
			bars = append(bars, barCell{height: e.Num("height"), fill: e.Attr("fill")})
			plotH = math.Max(plotH, e.Num("y")+e.Num("height"))
		})
	})
	if len(bars) == 0 || plotH <= 0 {
		return ""
	}

	cols := min(len(bars), max(m.width-2, 10))
	columns := make([]barCell, cols)
	for j := range columns {
		lo, hi := j*len(bars)/cols, (j+1)*len(bars)/cols
		col := barCell{fill: bars[lo].fill}
		for _, b := range bars[lo:max(hi, lo+1)] {
			col.height = math.Max(col.height, b.height)
			if b.fill != lifeexp.Neutral && col.fill == lifeexp.Neutral {
				col.fill = b.fill
			}
		}
		columns[j] = col
	}

	rows := m.plotRows()
	lines := make([]string, rows)
	for r := range lines {
		level := float64(rows - r)
		var line strings.Builder
		for _, col := range columns {
			if math.Round(col.height/plotH*float64(rows)) >= level && col.fill != "none" {
				line.WriteString(lipgloss.NewStyle().Foreground(termColor(col.fill)).Render("█"))
			} else {
				line.WriteByte(' ')
			}
		}
		lines[r] = line.String()
	}
	return strings.Join(lines, "\n")
}

// lineFigure plots the visible price series with asciigraph.
func (m previewModel) lineFigure(c *chart.Chart) string {
	var series [][]float64
	var colors []asciigraph.AnsiColor
	winter := false
	c.View(func(s *scene.Scene) {
		s.SelectAll(scene.Class("price-line")).Each(func(e *scene.Element) {
			stroke := e.Attr("stroke")
			if stroke == "none" {
				return
			}
			sr := e.Datum.(*housing.Series)
			prices := make([]float64, len(sr.Points))
			for i, p := range sr.Points {
				prices[i] = p.Price
			}
			series = append(series, prices)
			colors = append(colors, graphColor(stroke))
		})
		if bar := s.Select(scene.Class("highlight-bar")); bar != nil {
			winter = bar.Attr("fill") != "none"
		}
	})
	if len(series) == 0 {
		return StyleDim.Render(strings.Repeat("\n", m.plotRows()-1) + "(no series shown)")
	}

	caption := "median sale price by region"
	if winter {
		caption += fmt.Sprintf(" · shaded: %s to %s", housing.WinterStart.Format("Jan 06"), housing.WinterEnd.Format("Jan 06"))
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(m.plotRows()),
		asciigraph.Width(max(m.width-14, 20)),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	)
}

// termColor maps an SVG fill to a terminal colour.
func termColor(fill string) lipgloss.TerminalColor {
	switch fill {
	case "lightgrey":
		return lipgloss.Color("#d3d3d3")
	case "gray":
		return lipgloss.Color("#808080")
	case "red":
		return lipgloss.Color("#ff0000")
	case "turquoise":
		return lipgloss.Color("#40e0d0")
	case "black", "":
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(fill)
}

func graphColor(stroke string) asciigraph.AnsiColor {
	switch stroke {
	case housing.National:
		return asciigraph.Red
	case housing.Focus:
		return asciigraph.Turquoise
	case housing.Muted:
		return asciigraph.Gray
	}
	return asciigraph.Default
}
