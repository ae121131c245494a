package fluid

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum particle count to split a pass across
// workers. Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// workChunk is a range of outer particle indices for one worker.
type workChunk struct {
	start, end int
	fn         func(start, end int)
}

// workerPool runs pass bodies over disjoint index ranges. Each chunk only
// writes the particles in its own range, so no locking is needed.
type workerPool struct {
	numWorkers int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newWorkerPool(numWorkers int) *workerPool {
	return &workerPool{numWorkers: numWorkers}
}

// start launches persistent worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if p == nil || !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker processes chunks until stopped.
func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// forEach splits [0, n) into at most numWorkers contiguous chunks and
// blocks until every chunk is done. A nil pool, a single worker or a small
// n runs fn inline.
func (p *workerPool) forEach(n int, fn func(start, end int)) {
	if p == nil || p.numWorkers < 2 || n < parallelThreshold {
		fn(0, n)
		return
	}
	p.start()

	size := (n + p.numWorkers - 1) / p.numWorkers
	sent := 0
	for start := 0; start < n; start += size {
		p.workChan <- workChunk{start: start, end: min(start+size, n), fn: fn}
		sent++
	}
	for i := 0; i < sent; i++ {
		<-p.doneChan
	}
}

// SetWorkers sets how many goroutines the density and force passes use.
// n <= 0 means GOMAXPROCS; 1 runs serially. Results do not depend on n:
// each particle's sums are accumulated by one worker in index order.
func (s *Solver) SetWorkers(n int) {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	s.pool.stop()
	s.pool = nil
	if n > 1 {
		s.pool = newWorkerPool(n)
	}
}

// Workers returns the configured worker count.
func (s *Solver) Workers() int {
	if s.pool == nil {
		return 1
	}
	return s.pool.numWorkers
}

// Close stops any worker goroutines. The solver stays usable and runs
// serially afterwards.
func (s *Solver) Close() {
	s.pool.stop()
	s.pool = nil
}
