package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/i5heu/GoDequeBench/internal/testbench"
	"github.com/i5heu/GoDequeBench/pkg/circulardequeue"
	"github.com/i5heu/GoDequeBench/pkg/config"
	"github.com/i5heu/GoDequeBench/pkg/lockeddequeue"
	"github.com/i5heu/GoDequeBench/pkg/refdeque"
)

const (
	workloadTimed = "timed"
	workloadMixed = "mixed"
)

// BenchmarkResult holds results for one test run.
type BenchmarkResult struct {
	Implementation      string  `json:"implementation"`
	Workload            string  `json:"workload"`
	NumProducers        int     `json:"num_producers"`
	NumConsumers        int     `json:"num_consumers"`
	NumMessages         int64   `json:"num_messages"`          // produced count, or ops for mixed
	NumMessagesConsumed int64   `json:"num_messages_consumed"` // consumed count, or ops for mixed
	TestDuration        string  `json:"test_duration"`         // e.g. "10s"
	ActualElapsed       string  `json:"actual_elapsed"`        // measured time
	Throughput          float64 `json:"throughput_msgs_sec"`   // based on consumed count
	Timestamp           int64   `json:"timestamp"`
	GoVersion           string  `json:"go_version"`
}

// SystemInfo holds system information.
type SystemInfo struct {
	NumCPU            int     `json:"num_cpu"`
	TrueCPU           int     `json:"true_cpu,omitempty"`
	SimulatedCPUCount int     `json:"simulated_cpu_count,omitempty"`
	CPUModel          string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz       float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH            string  `json:"go_arch"`
	TotalMemory       uint64  `json:"total_memory_bytes,omitempty"`
}

// FullReport represents a complete test session.
type FullReport struct {
	SessionID   string            `json:"session_id"`
	SessionTime string            `json:"session_time"`
	SystemInfo  SystemInfo        `json:"system_info"`
	Benchmarks  []BenchmarkResult `json:"benchmarks"`
}

type dequeInterface = interface {
	Enqueue(*int)
	Dequeue() (*int, error)
	EnqueueBack(*int)
	DequeueBack() (*int, error)
	Size() int
	IsEmpty() bool
}

// Implementation represents a deque implementation. newDeque must return a
// value that is safe for concurrent use.
type Implementation[T any, Q interface {
	Enqueue(T)
	Dequeue() (T, error)
	EnqueueBack(T)
	DequeueBack() (T, error)
	Size() int
	IsEmpty() bool
}] struct {
	name        string
	description string
	pkgName     string
	authors     []string
	features    []string
	newDeque    func(capacity int) Q
}

// outputMarkdownTable loads the JSON file and outputs a Markdown table.
func outputMarkdownTable(jsonFile string) error {
	data, err := os.ReadFile(jsonFile)
	if err != nil {
		return errors.Wrapf(err, "reading JSON file %q", jsonFile)
	}
	var sessions []FullReport
	if err := json.Unmarshal(data, &sessions); err != nil {
		return errors.Wrap(err, "unmarshalling JSON")
	}
	if len(sessions) == 0 {
		return errors.New("no sessions found in JSON")
	}
	fmt.Print(renderMarkdownTable(sessions[len(sessions)-1]))
	return nil
}

// renderMarkdownTable summarizes one session, averaging throughput per
// implementation and workload.
func renderMarkdownTable(session FullReport) string {
	implMetaMap := make(map[string]Implementation[*int, dequeInterface])
	for _, impl := range getImplementations() {
		implMetaMap[impl.name] = impl
	}
	type key struct{ impl, workload string }
	type tableRow struct {
		implementation string
		workload       string
		pkgName        string
		features       string
		author         string
		throughput     float64
		samples        int
	}
	rowsByKey := make(map[key]*tableRow)
	var rows []*tableRow
	for _, bench := range session.Benchmarks {
		k := key{bench.Implementation, bench.Workload}
		row, ok := rowsByKey[k]
		if !ok {
			row = &tableRow{implementation: bench.Implementation, workload: bench.Workload}
			if meta, ok := implMetaMap[bench.Implementation]; ok {
				row.pkgName = meta.pkgName
				row.features = strings.Join(meta.features, ", ")
				row.author = strings.Join(meta.authors, ", ")
			}
			rowsByKey[k] = row
			rows = append(rows, row)
		}
		row.throughput += bench.Throughput
		row.samples++
	}
	for _, r := range rows {
		r.throughput /= float64(r.samples)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].workload != rows[j].workload {
			return rows[i].workload < rows[j].workload
		}
		return rows[i].throughput > rows[j].throughput
	})

	var sb strings.Builder
	sb.WriteString("## Last Session Benchmark Summary\n\n")
	sb.WriteString("| Implementation                | Workload | Package         | Features                    | Author                      | Throughput (ops/sec) |\n")
	sb.WriteString("|-------------------------------|----------|-----------------|-----------------------------|-----------------------------|----------------------|\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "| %-29s | %-8s | %-15s | %-27s | %-27s | %20.0f |\n",
			r.implementation, r.workload, r.pkgName, r.features, r.author, r.throughput)
	}
	return sb.String()
}

func main() {
	testIterations := flag.Int("iter", 0, "Number of test iterations per concurrency setting (0 keeps the profile value)")
	cpuMaxFlag := flag.Int("cpu", 0, "If non-zero, test only that GOMAXPROCS value; if 0, test common CPU/vCPU values up to runtime.NumCPU()")
	jsonExport := flag.Bool("json", false, "Export results as JSON to test-results.json")
	highConcurrency := flag.Bool("high-concurrency", false, "Include high concurrency configurations")
	markdownTable := flag.Bool("markdown-table", false, "Output markdown table from test-results.json and exit")
	jsonFileForMarkdown := flag.String("jsonfile", "test-results.json", "Path to JSON file for markdown table")
	progressFlag := flag.Bool("progress", false, "Display a progress bar with ETA")
	profileFile := flag.String("config", "", "Path to a YAML bench profile")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error creating logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if *markdownTable {
		if err := outputMarkdownTable(*jsonFileForMarkdown); err != nil {
			logger.Fatal("markdown table", zap.Error(err))
		}
		return
	}

	profile := config.Default()
	if *profileFile != "" {
		if profile, err = config.Load(*profileFile); err != nil {
			logger.Fatal("loading profile", zap.Error(err))
		}
	}
	if *testIterations > 0 {
		profile.Iterations = *testIterations
	}
	if *highConcurrency {
		profile.Concurrency = append(profile.Concurrency, config.HighConcurrency()...)
	}

	trueCpuCount := runtime.NumCPU()
	cpuSettings := selectCPUSettings(*cpuMaxFlag, trueCpuCount)

	impls := getImplementations()
	testsPerCPU := len(profile.Concurrency) * profile.Iterations * len(impls)
	if profile.MixedOps > 0 {
		testsPerCPU += profile.Iterations * len(impls)
	}
	totalTests := len(cpuSettings) * testsPerCPU

	var bar *progressbar.ProgressBar
	if *progressFlag {
		bar = progressbar.NewOptions(totalTests,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Progress"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionClearOnFinish(),
		)
	}

	logger.Info("starting bench",
		zap.Ints("gomaxprocs", cpuSettings),
		zap.Int("iterations", profile.Iterations),
		zap.Duration("duration", profile.Duration),
		zap.Int("implementations", len(impls)),
		zap.Int("tests", totalTests),
	)

	var allSessions []FullReport

	for _, cpus := range cpuSettings {
		runtime.GOMAXPROCS(cpus)
		sysInfo := gatherSystemInfo(logger)
		sysInfo.NumCPU = cpus
		sysInfo.TrueCPU = trueCpuCount
		sysInfo.SimulatedCPUCount = cpus

		fmt.Printf("\n=============================\n")
		fmt.Printf("GOMAXPROCS = %d\n", cpus)
		fmt.Printf("=============================\n")

		var results []BenchmarkResult
		record := func(r BenchmarkResult) {
			results = append(results, r)
			if bar != nil {
				_ = bar.Add(1)
			}
		}

		for _, cfg := range profile.Concurrency {
			fmt.Printf("  [Concurrency: producers=%d, consumers=%d]\n", cfg.NumProducers, cfg.NumConsumers)
			for iteration := 1; iteration <= profile.Iterations; iteration++ {
				fmt.Printf("    iteration %d/%d\n", iteration, profile.Iterations)
				for _, impl := range impls {
					runtime.GC()
					q := impl.newDeque(profile.InitialCapacity)
					time.Sleep(250 * time.Millisecond)

					produced, consumed, actualTime := testbench.RunTimedTest(
						q,
						cfg,
						profile.Duration,
						newValue,
					)
					throughput := float64(consumed) / actualTime.Seconds()

					fmt.Printf("    %s => produced=%d, consumed=%d, throughput=%.0f msg/s, took=%v\n",
						impl.name, produced, consumed, throughput, actualTime)
					if produced != consumed {
						logger.Warn("messages lost",
							zap.String("implementation", impl.name),
							zap.Int64("produced", produced),
							zap.Int64("consumed", consumed),
						)
					}

					record(BenchmarkResult{
						Implementation:      impl.name,
						Workload:            workloadTimed,
						NumProducers:        cfg.NumProducers,
						NumConsumers:        cfg.NumConsumers,
						NumMessages:         produced,
						NumMessagesConsumed: consumed,
						TestDuration:        profile.Duration.String(),
						ActualElapsed:       actualTime.String(),
						Throughput:          throughput,
						Timestamp:           time.Now().Unix(),
						GoVersion:           runtime.Version(),
					})
				}
			}
		}

		if profile.MixedOps > 0 {
			fmt.Printf("  [Mixed single goroutine: ops=%d]\n", profile.MixedOps)
			for iteration := 1; iteration <= profile.Iterations; iteration++ {
				for _, impl := range impls {
					runtime.GC()
					q := impl.newDeque(profile.InitialCapacity)
					ops, actualTime, err := testbench.RunMixedTest(q, profile.MixedOps, newValue)
					if err != nil {
						logger.Error("mixed workload failed",
							zap.String("implementation", impl.name),
							zap.Error(err),
						)
						continue
					}
					throughput := float64(ops) / actualTime.Seconds()
					fmt.Printf("    %s => ops=%d, throughput=%.0f ops/s, took=%v\n",
						impl.name, ops, throughput, actualTime)

					record(BenchmarkResult{
						Implementation:      impl.name,
						Workload:            workloadMixed,
						NumProducers:        1,
						NumConsumers:        1,
						NumMessages:         ops,
						NumMessagesConsumed: ops,
						ActualElapsed:       actualTime.String(),
						Throughput:          throughput,
						Timestamp:           time.Now().Unix(),
						GoVersion:           runtime.Version(),
					})
				}
			}
		}

		allSessions = append(allSessions, FullReport{
			SessionID:   ulid.Make().String(),
			SessionTime: time.Now().Format(time.RFC3339),
			SystemInfo:  sysInfo,
			Benchmarks:  results,
		})
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if *jsonExport {
		const filename = "test-results.json"
		if err := appendSessions(filename, allSessions); err != nil {
			logger.Fatal("exporting JSON", zap.Error(err))
		}
		fmt.Printf("\nWrote results to %s\n", filename)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newValue(i int) *int {
	v := i
	return &v
}

// selectCPUSettings returns the GOMAXPROCS values to run with.
func selectCPUSettings(cpuMax, trueCpuCount int) []int {
	if cpuMax > 0 {
		if cpuMax > trueCpuCount {
			cpuMax = trueCpuCount
		}
		return []int{cpuMax}
	}
	commonCPUs := []int{1, 2, 3, 4, 6, 8, 12, 16, 32, 48, 56, 64, 96, 128, 192, 256, 384, 512}
	var cpuSettings []int
	for _, v := range commonCPUs {
		if v <= trueCpuCount {
			cpuSettings = append(cpuSettings, v)
		}
	}
	return cpuSettings
}

// appendSessions appends sessions to the JSON report at filename, creating it if needed.
func appendSessions(filename string, sessions []FullReport) error {
	var previous []FullReport
	data, err := os.ReadFile(filename)
	switch {
	case err == nil && len(data) > 0:
		if err := json.Unmarshal(data, &previous); err != nil {
			return errors.Wrapf(err, "parsing existing %s", filename)
		}
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return errors.Wrapf(err, "reading %s", filename)
	}
	updated := append(previous, sessions...)
	data, err = json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshalling JSON")
	}
	return errors.Wrapf(os.WriteFile(filename, data, 0644), "writing %s", filename)
}

// gatherSystemInfo collects basic CPU and memory details.
func gatherSystemInfo(logger *zap.Logger) SystemInfo {
	info := SystemInfo{
		NumCPU: runtime.NumCPU(),
		GOARCH: runtime.GOARCH,
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUModel = infos[0].ModelName
		info.CPUSpeedMHz = infos[0].Mhz
	} else if err != nil {
		logger.Debug("cpu info unavailable", zap.Error(err))
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	} else {
		logger.Debug("memory info unavailable", zap.Error(err))
	}
	return info
}

// getImplementations enumerates our different deque implementations.
func getImplementations() []Implementation[*int, dequeInterface] {
	return []Implementation[*int, dequeInterface]{
		{
			name:        "CircularDequeue",
			pkgName:     "circulardequeue",
			description: "Single ring buffer that doubles when full, guarded by one mutex.",
			authors:     []string{"Mia Heidenstedt <heidenstedt.org>"},
			features:    []string{"Deque", "FIFO", "Unbounded", "Locked"},
			newDeque: func(capacity int) dequeInterface {
				return lockeddequeue.New[*int](circulardequeue.WithInitialCapacity(capacity))
			},
		},
		{
			name:        "CircularDequeue (x1.5 growth)",
			pkgName:     "circulardequeue",
			description: "CircularDequeue with a 1.5x growth function, guarded by one mutex.",
			authors:     []string{"Mia Heidenstedt <heidenstedt.org>"},
			features:    []string{"Deque", "FIFO", "Unbounded", "Locked"},
			newDeque: func(capacity int) dequeInterface {
				return lockeddequeue.New[*int](
					circulardequeue.WithInitialCapacity(capacity),
					circulardequeue.WithGrowth(func(n int) int { return n + n/2 }),
				)
			},
		},
		{
			name:        "gammazero/deque",
			pkgName:     "refdeque",
			description: "github.com/gammazero/deque power-of-two ring, guarded by one mutex.",
			authors:     []string{"Andrew J. Gillis"},
			features:    []string{"Deque", "FIFO", "Unbounded", "Locked"},
			newDeque: func(capacity int) dequeInterface {
				return lockeddequeue.Wrap[*int](refdeque.New[*int](capacity))
			},
		},
	}
}
