package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByCPU(t *testing.T) {
	sessions := []FullReport{
		{
			SystemInfo: SystemInfo{NumCPU: 8, SimulatedCPUCount: 2},
			Benchmarks: []BenchmarkResult{
				{Implementation: "CircularDequeue", Workload: "timed", NumProducers: 2, NumConsumers: 2, NumMessagesConsumed: 1000, ActualElapsed: "1ms"},
				{Implementation: "CircularDequeue", Workload: "mixed", NumMessagesConsumed: 500, ActualElapsed: "1ms"},
				{Implementation: "broken", Workload: "timed", NumMessagesConsumed: 10, ActualElapsed: "never"},
				{Implementation: "idle", Workload: "timed", ActualElapsed: "1s"},
			},
		},
		{
			SystemInfo: SystemInfo{NumCPU: 4},
			Benchmarks: []BenchmarkResult{
				{Implementation: "gammazero/deque", NumProducers: 1, NumConsumers: 1, NumMessagesConsumed: 10, ActualElapsed: "1µs"},
			},
		},
	}

	timed, mixed := groupByCPU(sessions)
	require.Equal(t, []int{2, 4}, sortedKeys(timed))
	assert.Equal(t, []float64{1000}, timed[2]["CircularDequeue"][4])
	assert.NotContains(t, timed[2], "broken")
	assert.NotContains(t, timed[2], "idle")
	assert.Equal(t, []float64{100}, timed[4]["gammazero/deque"][2])
	assert.Equal(t, []float64{2000}, mixed[2]["CircularDequeue"])
	assert.NotContains(t, mixed, 4)
}

func TestBuildStats(t *testing.T) {
	vals := make([]float64, 0, 40)
	for i := 40; i > 0; i-- {
		vals = append(vals, float64(i))
	}
	stats := buildStats(map[float64][]float64{4: vals, 8: nil})
	require.Len(t, stats, 1)
	s := stats[0]
	assert.Equal(t, 4.0, s.orig)
	assert.Equal(t, 20.5, s.median)
	assert.Equal(t, 1.5, s.min)
	assert.Equal(t, 39.5, s.max)

	low, high := statsPoints(stats).YError(0)
	assert.Equal(t, 19.0, low)
	assert.Equal(t, 19.0, high)
}

func TestAverageOfRangeFallsBackToMedian(t *testing.T) {
	assert.Equal(t, 2.0, averageOfRange([]float64{1, 2, 3}, 0, 0.05))
	assert.Equal(t, 0.0, averageOfRange(nil, 0, 1))
}

func TestFormatNs(t *testing.T) {
	assert.Equal(t, "500ns", formatNs(500))
	assert.Equal(t, "1.5µs", formatNs(1500))
	assert.Equal(t, "2.0ms", formatNs(2e6))
	assert.Equal(t, "3.00s", formatNs(3e9))
}
