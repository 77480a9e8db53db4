package circulardequeue

import (
	"math/rand/v2"
	"testing"

	"github.com/gammazero/deque"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmpty(t *testing.T) {
	d := New[int]()
	assert.Equal(t, 0, d.Size())
	assert.True(t, d.IsEmpty())
	assert.Equal(t, DefaultCapacity, d.Cap())

	// Failing removals must not disturb the state.
	for i := 0; i < 3; i++ {
		v, err := d.Dequeue()
		require.ErrorIs(t, err, ErrEmptyCollection)
		assert.Zero(t, v)

		v, err = d.DequeueBack()
		require.ErrorIs(t, err, ErrEmptyCollection)
		assert.Zero(t, v)
	}
	assert.Equal(t, 0, d.Size())
	assert.Equal(t, DefaultCapacity, d.Cap())

	d.Enqueue(7)
	v, err := d.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestSizeAfterEnqueues(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 100, 1000} {
		d := New[int]()
		for i := 0; i < n; i++ {
			d.Enqueue(i)
		}
		assert.Equal(t, n, d.Size(), "n=%d", n)
		assert.Equal(t, n == 0, d.IsEmpty(), "n=%d", n)
	}
}

func TestFIFOFrontToBack(t *testing.T) {
	d := New[string]()
	d.Enqueue("a")
	d.Enqueue("b")
	d.Enqueue("c")

	for _, want := range []string{"a", "b", "c"} {
		got, err := d.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.True(t, d.IsEmpty())
}

func TestFIFOBackToFront(t *testing.T) {
	d := New[string]()
	d.EnqueueBack("a")
	d.EnqueueBack("b")
	d.EnqueueBack("c")

	for _, want := range []string{"a", "b", "c"} {
		got, err := d.DequeueBack()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.True(t, d.IsEmpty())
}

func TestMixedEnds(t *testing.T) {
	d := New[int]()
	d.Enqueue(1)
	d.EnqueueBack(2)

	got, err := d.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	got, err = d.DequeueBack()
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	_, err = d.Dequeue()
	require.ErrorIs(t, err, ErrEmptyCollection)
}

func TestGrowth(t *testing.T) {
	d := New[int]()
	for i := 0; i < DefaultCapacity; i++ {
		d.Enqueue(i)
	}
	require.Equal(t, DefaultCapacity, d.Cap())

	d.Enqueue(DefaultCapacity)
	assert.Equal(t, 2*DefaultCapacity, d.Cap())
	assert.Equal(t, DefaultCapacity+1, d.Size())

	for i := 0; i <= DefaultCapacity; i++ {
		got, err := d.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
	assert.True(t, d.IsEmpty())
}

func TestGrowthFromFront(t *testing.T) {
	d := New[int]()
	for i := 0; i < 20; i++ {
		d.EnqueueBack(i)
	}
	assert.Equal(t, 32, d.Cap())
	for i := 0; i < 20; i++ {
		got, err := d.DequeueBack()
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
}

func TestGrowthWhileWrapped(t *testing.T) {
	d := New[int]()
	// Push the cursors around the ring before filling it.
	for i := 0; i < 5; i++ {
		d.Enqueue(-1)
		_, err := d.Dequeue()
		require.NoError(t, err)
	}
	for i := 0; i < 4; i++ {
		d.Enqueue(i + 4)
	}
	for i := 3; i >= 0; i-- {
		d.EnqueueBack(i)
	}
	require.Equal(t, DefaultCapacity, d.Size())

	d.EnqueueBack(-1)
	d.Enqueue(8)
	assert.Equal(t, 16, d.Cap())

	want := []int{-1, 0, 1, 2, 3, 4, 5, 6, 7, 8}
	for _, w := range want {
		got, err := d.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}
}

func TestCapacityNeverShrinks(t *testing.T) {
	d := New[int]()
	for i := 0; i < 100; i++ {
		d.Enqueue(i)
	}
	peak := d.Cap()
	for !d.IsEmpty() {
		_, err := d.DequeueBack()
		require.NoError(t, err)
		assert.Equal(t, peak, d.Cap())
	}
}

func TestNilValuesAreStored(t *testing.T) {
	d := New[*int]()
	d.Enqueue(nil)
	d.EnqueueBack(nil)
	assert.Equal(t, 2, d.Size())

	v, err := d.Dequeue()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = d.DequeueBack()
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = d.Dequeue()
	require.ErrorIs(t, err, ErrEmptyCollection)
}

func TestZeroValuesAreStored(t *testing.T) {
	d := New[error]()
	for i := 0; i < 10; i++ {
		d.Enqueue(nil)
	}
	n := 0
	for {
		_, err := d.Dequeue()
		if err != nil {
			require.ErrorIs(t, err, ErrEmptyCollection)
			break
		}
		n++
	}
	assert.Equal(t, 10, n)
}

func TestCustomGrowth(t *testing.T) {
	var calls []int
	d := New[int](WithInitialCapacity(2), WithGrowth(func(n int) int {
		calls = append(calls, n)
		return n + 3
	}))
	assert.Equal(t, 2, d.Cap())
	for i := 0; i < 6; i++ {
		d.Enqueue(i)
	}
	assert.Equal(t, []int{2, 5}, calls)
	assert.Equal(t, 8, d.Cap())
	for i := 0; i < 6; i++ {
		got, err := d.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
}

func TestGrowthAlwaysMakesRoom(t *testing.T) {
	d := New[int](WithInitialCapacity(1), WithGrowth(func(n int) int { return n }))
	for i := 0; i < 5; i++ {
		d.EnqueueBack(i)
	}
	assert.Equal(t, 5, d.Cap())
	for i := 0; i < 5; i++ {
		got, err := d.DequeueBack()
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
}

func TestOptionDefaults(t *testing.T) {
	d := New[int](WithInitialCapacity(0), WithGrowth(nil))
	assert.Equal(t, DefaultCapacity, d.Cap())
	for i := 0; i <= DefaultCapacity; i++ {
		d.Enqueue(i)
	}
	assert.Equal(t, 2*DefaultCapacity, d.Cap())
}

func TestRepeatedFillAndDrain(t *testing.T) {
	d := New[int]()
	for round := 0; round < 50; round++ {
		n := round*3 + 1
		for i := 0; i < n; i++ {
			if round%2 == 0 {
				d.Enqueue(i)
			} else {
				d.EnqueueBack(i)
			}
		}
		for i := 0; i < n; i++ {
			var got int
			var err error
			if round%2 == 0 {
				got, err = d.Dequeue()
			} else {
				got, err = d.DequeueBack()
			}
			require.NoError(t, err)
			require.Equal(t, i, got, "round %d", round)
		}
		require.True(t, d.IsEmpty())
	}
}

// TestAgainstReference drives random operation sequences through both
// CircularDequeue and gammazero/deque and expects identical results.
func TestAgainstReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for seq := 0; seq < 200; seq++ {
		d := New[int](WithInitialCapacity(1 + rng.IntN(8)))
		ref := deque.New[int]()
		next := 0
		for op := 0; op < 500; op++ {
			switch rng.IntN(4) {
			case 0:
				d.Enqueue(next)
				ref.PushBack(next)
				next++
			case 1:
				d.EnqueueBack(next)
				ref.PushFront(next)
				next++
			case 2:
				got, err := d.Dequeue()
				if ref.Len() == 0 {
					require.ErrorIs(t, err, ErrEmptyCollection)
					continue
				}
				require.NoError(t, err)
				require.Equal(t, ref.PopFront(), got)
			case 3:
				got, err := d.DequeueBack()
				if ref.Len() == 0 {
					require.ErrorIs(t, err, ErrEmptyCollection)
					continue
				}
				require.NoError(t, err)
				require.Equal(t, ref.PopBack(), got)
			}
			require.Equal(t, ref.Len(), d.Size())
		}

		// Drain and check we get exactly what is left.
		for ref.Len() > 0 {
			got, err := d.Dequeue()
			require.NoError(t, err)
			require.Equal(t, ref.PopFront(), got)
		}
		require.True(t, d.IsEmpty())
	}
}

func BenchmarkEnqueueDequeue(b *testing.B) {
	d := New[int]()
	for i := 0; i < b.N; i++ {
		d.Enqueue(i)
		if _, err := d.Dequeue(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGrowth(b *testing.B) {
	for i := 0; i < b.N; i++ {
		d := New[int]()
		for j := 0; j < 1024; j++ {
			d.EnqueueBack(j)
		}
	}
}
