package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// BenchmarkResult holds the fields of one bench result the graphs need.
type BenchmarkResult struct {
	Implementation      string  `json:"implementation"`
	Workload            string  `json:"workload"`
	NumProducers        int     `json:"num_producers"`
	NumConsumers        int     `json:"num_consumers"`
	NumMessagesConsumed int64   `json:"num_messages_consumed"`
	ActualElapsed       string  `json:"actual_elapsed"`
	Throughput          float64 `json:"throughput_msgs_sec"`
}

// SystemInfo holds the system fields used for grouping.
type SystemInfo struct {
	NumCPU            int `json:"num_cpu"`
	SimulatedCPUCount int `json:"simulated_cpu_count,omitempty"`
}

// FullReport represents a complete test session.
type FullReport struct {
	SessionID  string            `json:"session_id"`
	SystemInfo SystemInfo        `json:"system_info"`
	Benchmarks []BenchmarkResult `json:"benchmarks"`
}

// categoryTicks implements a categorical X-axis: 0,1,2,... => labels for concurrency.
type categoryTicks struct {
	positions []float64
	labels    []string
}

func (ct categoryTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i, pos := range ct.positions {
		if pos >= min && pos <= max {
			ticks = append(ticks, plot.Tick{Value: pos, Label: ct.labels[i]})
		}
	}
	return ticks
}

var (
	background = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	white      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func main() {
	jsonFile := flag.String("jsonfile", "test-results.json", "Path to JSON file containing test sessions")
	outputPrefix := flag.String("out", "benchmark_graph", "Output graph image filename prefix")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error creating logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	sessions, err := loadSessions(*jsonFile)
	if err != nil {
		logger.Fatal("loading sessions", zap.Error(err))
	}

	timed, mixed := groupByCPU(sessions)

	for _, cpus := range sortedKeys(timed) {
		p := newDarkPlot(fmt.Sprintf("Timed workload (5%%-avg-min / Median / 5%%-avg-max) for %d CPU(s)", cpus))
		p.X.Label.Text = "NumProducers + NumConsumers"
		p.Y.Label.Text = "Time per Msg (ns)"
		p.Y.Tick.Marker = plot.TickerFunc(func(min, max float64) []plot.Tick {
			ticks := plot.DefaultTicks{}.Ticks(min, max)
			for i := range ticks {
				if ticks[i].Label != "" {
					ticks[i].Label = formatNs(ticks[i].Value)
				}
			}
			return ticks
		})
		if err := addConcurrencySeries(p, timed[cpus]); err != nil {
			logger.Error("building timed plot", zap.Int("cpus", cpus), zap.Error(err))
			continue
		}
		filename := fmt.Sprintf("%s_%d.png", *outputPrefix, cpus)
		if err := p.Save(12*vg.Inch, 9*vg.Inch, filename); err != nil {
			logger.Error("saving plot", zap.Int("cpus", cpus), zap.Error(err))
			continue
		}
		fmt.Printf("Graph for %d CPU(s) saved to %s\n", cpus, filename)
	}

	for _, cpus := range sortedKeys(mixed) {
		p := newDarkPlot(fmt.Sprintf("Mixed single goroutine workload (median) for %d CPU(s)", cpus))
		p.Y.Label.Text = "Time per Op (ns)"
		if err := addMixedBars(p, mixed[cpus]); err != nil {
			logger.Error("building mixed plot", zap.Int("cpus", cpus), zap.Error(err))
			continue
		}
		filename := fmt.Sprintf("%s_mixed_%d.png", *outputPrefix, cpus)
		if err := p.Save(10*vg.Inch, 6*vg.Inch, filename); err != nil {
			logger.Error("saving plot", zap.Int("cpus", cpus), zap.Error(err))
			continue
		}
		fmt.Printf("Mixed graph for %d CPU(s) saved to %s\n", cpus, filename)
	}
}

func loadSessions(path string) ([]FullReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", path)
	}
	var sessions []FullReport
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling %q", path)
	}
	return sessions, nil
}

func newDarkPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.BackgroundColor = background
	p.Title.TextStyle.Color = white
	p.X.Label.TextStyle.Color = white
	p.Y.Label.TextStyle.Color = white
	p.X.Color = white
	p.Y.Color = white
	p.X.Tick.Label.Color = white
	p.Y.Tick.Label.Color = white
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.TextStyle.Color = white
	p.Add(plotter.NewGrid())
	return p
}

// addConcurrencySeries draws one line with error bars per implementation.
func addConcurrencySeries(p *plot.Plot, implMap map[string]map[float64][]float64) error {
	concurrencySet := make(map[float64]struct{})
	for _, implData := range implMap {
		for conc := range implData {
			concurrencySet[conc] = struct{}{}
		}
	}
	var concValues []float64
	for val := range concurrencySet {
		concValues = append(concValues, val)
	}
	sort.Float64s(concValues)

	concMapping := make(map[float64]float64)
	var positions []float64
	var labels []string
	for i, val := range concValues {
		concMapping[val] = float64(i)
		positions = append(positions, float64(i))
		labels = append(labels, strconv.FormatFloat(val, 'f', -1, 64))
	}
	p.X.Tick.Marker = categoryTicks{positions: positions, labels: labels}

	implNames := sortedKeys(implMap)
	colors := plotutil.SoftColors
	shapes := []draw.GlyphDrawer{
		draw.CircleGlyph{},
		draw.SquareGlyph{},
		draw.TriangleGlyph{},
		draw.CrossGlyph{},
		draw.PlusGlyph{},
	}

	// Slight offset so each implementation is visually separated.
	offsetRange := 0.4
	offsetStep := offsetRange / float64(len(implNames))
	startOffset := -offsetRange/2 + offsetStep/2

	for i, impl := range implNames {
		stats := buildStats(implMap[impl])
		if len(stats) == 0 {
			continue
		}
		for j := range stats {
			stats[j].concurrency = concMapping[stats[j].orig] + startOffset + float64(i)*offsetStep
		}
		sort.Slice(stats, func(a, b int) bool {
			return stats[a].concurrency < stats[b].concurrency
		})
		sp := statsPoints(stats)

		line, err := plotter.NewLine(sp)
		if err != nil {
			return errors.Wrapf(err, "line for %s", impl)
		}
		line.Color = colors[i%len(colors)]

		points, err := plotter.NewScatter(sp)
		if err != nil {
			return errors.Wrapf(err, "scatter for %s", impl)
		}
		points.GlyphStyle.Radius = vg.Points(5)
		points.Color = colors[i%len(colors)]
		points.Shape = shapes[i%len(shapes)]

		yErrBars, err := plotter.NewYErrorBars(sp)
		if err != nil {
			return errors.Wrapf(err, "error bars for %s", impl)
		}
		yErrBars.Color = colors[i%len(colors)]

		p.Add(line, points, yErrBars)
		p.Legend.Add(impl, line, points)
	}
	return nil
}

// addMixedBars draws one bar per implementation with the median ns/op.
func addMixedBars(p *plot.Plot, implMap map[string][]float64) error {
	implNames := sortedKeys(implMap)
	values := make(plotter.Values, len(implNames))
	for i, impl := range implNames {
		vals := append([]float64(nil), implMap[impl]...)
		sort.Float64s(vals)
		values[i] = median(vals)
	}
	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return errors.Wrap(err, "bar chart")
	}
	bars.Color = plotutil.SoftColors[0]
	p.Add(bars)
	p.NominalX(implNames...)
	return nil
}
