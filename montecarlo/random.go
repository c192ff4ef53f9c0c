package montecarlo

import (
	"runtime"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Normals is a single seeded stream of standard normal draws. Simulators
// fill every step's random matrix from one stream before stepping paths in
// parallel, so the worker count never changes which draw feeds which path.
type Normals struct {
	dist distuv.Normal
}

func NewNormals(seed uint64) *Normals {
	return &Normals{
		dist: distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)},
	}
}

// Fill overwrites dst with the next len(dst) draws.
func (n *Normals) Fill(dst []float64) {
	for i := range dst {
		dst[i] = n.dist.Rand()
	}
}

// NormalMatrix returns a rows x cols matrix of draws taken row by row from
// one stream seeded with seed.
func NormalMatrix(rows, cols int, seed uint64) [][]float64 {
	src := NewNormals(seed)
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		src.Fill(m[i])
	}
	return m
}

// DefaultWorkers is the worker count used when a simulator is given zero.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// ParallelFor splits [0, n) into contiguous chunks and runs fn on each chunk
// in its own goroutine. It returns once every chunk is done.
func ParallelFor(n, workers int, fn func(lo, hi int)) {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		if n > 0 {
			fn(0, n)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
