package task

import (
	"sync"
	"time"
)

// Pool bounds how many scrape invocations run in parallel. Each job owns
// a full browser process, so the cap is small and a minimum spacing
// between job starts keeps the target host from seeing launch bursts.
type Pool struct {
	semaphore chan struct{}
	spacing   time.Duration
	wg        sync.WaitGroup

	mu        sync.Mutex
	lastStart time.Time
}

// NewPool creates a Pool running at most maxWorkers jobs at once, with at
// least spacing between consecutive job starts.
func NewPool(maxWorkers int, spacing time.Duration) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Pool{
		semaphore: make(chan struct{}, maxWorkers),
		spacing:   spacing,
	}
}

// Submit enqueues a job. It returns immediately; the job runs once a
// worker slot frees up.
func (p *Pool) Submit(job func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.semaphore <- struct{}{}
		defer func() { <-p.semaphore }()

		p.pace()
		job()
	}()
}

// Wait blocks until every submitted job has completed.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) pace() {
	if p.spacing <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if elapsed := time.Since(p.lastStart); elapsed < p.spacing {
		time.Sleep(p.spacing - elapsed)
	}
	p.lastStart = time.Now()
}
