package testbench

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammazero/deque"
	"github.com/pkg/errors"

	"github.com/i5heu/GoDequeBench/internal/queue"
)

// Config is only about concurrency: how many producers, how many consumers.
type Config struct {
	NumProducers int `yaml:"producers" json:"producers"`
	NumConsumers int `yaml:"consumers" json:"consumers"`
}

// RunTimedTest spawns producers and consumers that run for the specified
// duration, measuring how many messages are actually enqueued/dequeued
// in that window. Producers alternate between both insertion ends and
// consumers between both removal ends. Once the context expires, producers
// stop and consumers drain any remaining messages.
// q must be safe for concurrent use (see lockeddequeue).
// Returns the total messages enqueued, total consumed, and the actual elapsed time.
func RunTimedTest[T any, Q queue.DequeValidationInterface[T]](
	q Q,
	cfg Config,
	testDuration time.Duration,
	valueGenerator func(int) T,
) (producedCount int64, consumedCount int64, elapsed time.Duration) {

	ctx, cancel := context.WithTimeout(context.Background(), testDuration)
	defer cancel()

	var totalProduced int64
	var totalConsumed int64

	start := time.Now()

	var msgIndex int64
	var prodWg sync.WaitGroup
	prodWg.Add(cfg.NumProducers)

	var productionDone int32 = 0

	go func() {
		<-ctx.Done()
		atomic.StoreInt32(&productionDone, 1)
	}()

	for i := 0; i < cfg.NumProducers; i++ {
		go func(id int) {
			defer prodWg.Done()
			back := id%2 == 0
			for atomic.LoadInt32(&productionDone) == 0 {
				idx := atomic.AddInt64(&msgIndex, 1) - 1
				msg := valueGenerator(int(idx))
				if back {
					q.Enqueue(msg)
				} else {
					q.EnqueueBack(msg)
				}
				back = !back
				atomic.AddInt64(&totalProduced, 1)
			}
		}(i)
	}

	var consWg sync.WaitGroup
	consWg.Add(cfg.NumConsumers)
	for i := 0; i < cfg.NumConsumers; i++ {
		go func(id int) {
			defer consWg.Done()
			front := id%2 == 0
			take := func() bool {
				var err error
				if front {
					_, err = q.Dequeue()
				} else {
					_, err = q.DequeueBack()
				}
				front = !front
				return err == nil
			}
			for atomic.LoadInt32(&productionDone) == 0 {
				if take() {
					atomic.AddInt64(&totalConsumed, 1)
				} else {
					runtime.Gosched()
				}
			}
			// Production is done: wait for producers, then drain.
			prodWg.Wait()
			for take() {
				atomic.AddInt64(&totalConsumed, 1)
			}
		}(i)
	}

	<-ctx.Done()
	prodWg.Wait()
	consWg.Wait()

	elapsed = time.Since(start)
	producedCount = atomic.LoadInt64(&totalProduced)
	consumedCount = atomic.LoadInt64(&totalConsumed)
	return producedCount, consumedCount, elapsed
}

// ErrOrderViolation is returned by RunMixedTest when q hands back an element
// that differs from what the reference deque holds at the same end.
var ErrOrderViolation = errors.New("testbench: element out of order")

// RunMixedTest runs totalOps operations on q from a single goroutine. The
// workload pushes bursts onto both ends (forcing growth), then drains part
// of them from both ends, and repeats. Every result is checked against a
// gammazero/deque shadow. The remaining elements are drained at the end and
// counted towards ops.
func RunMixedTest[T comparable, Q queue.DequeValidationInterface[T]](
	q Q,
	totalOps int,
	valueGenerator func(int) T,
) (ops int64, elapsed time.Duration, err error) {
	shadow := deque.New[T]()
	start := time.Now()

	burst := 1
	idx := 0
	for int(ops) < totalOps {
		for i := 0; i < burst && int(ops) < totalOps; i++ {
			v := valueGenerator(idx)
			idx++
			if i%3 == 0 {
				q.EnqueueBack(v)
				shadow.PushFront(v)
			} else {
				q.Enqueue(v)
				shadow.PushBack(v)
			}
			ops++
		}
		for i := 0; i < burst/2 && int(ops) < totalOps; i++ {
			if err := takeChecked[T](q, shadow, i%2 == 0); err != nil {
				return ops, time.Since(start), errors.Wrapf(err, "after %d ops", ops)
			}
			ops++
		}
		burst *= 2
		if burst > 4096 {
			burst = 1
		}
	}

	for shadow.Len() > 0 {
		if err := takeChecked[T](q, shadow, ops%2 == 0); err != nil {
			return ops, time.Since(start), errors.Wrap(err, "draining")
		}
		ops++
	}
	if !q.IsEmpty() || q.Size() != 0 {
		return ops, time.Since(start), errors.Errorf("testbench: %d elements left after drain", q.Size())
	}
	return ops, time.Since(start), nil
}

func takeChecked[T comparable, Q queue.DequeValidationInterface[T]](q Q, shadow *deque.Deque[T], front bool) error {
	var got, want T
	var err error
	if front {
		got, err = q.Dequeue()
		want = shadow.PopFront()
	} else {
		got, err = q.DequeueBack()
		want = shadow.PopBack()
	}
	if err != nil {
		return err
	}
	if got != want {
		return ErrOrderViolation
	}
	return nil
}
