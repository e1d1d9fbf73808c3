package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olimpofit/gym-server/internal/pkg/distlock"
)

// jobTimeout bounds one job execution so a stuck provider call cannot
// wedge the schedule.
const jobTimeout = 10 * time.Minute

// JobFunc is one scheduled unit of work. The returned count is
// whatever the job considers its processed-items number.
type JobFunc func(ctx context.Context) (int, error)

// Runner executes a job on a schedule. Overlap with concurrent API
// writes is tolerated; rows touched by both sides resolve last-write-
// wins. An optional distributed lock keeps the same job from running
// twice when multiple processes schedule it.
type Runner struct {
	name     string
	schedule Schedule
	run      JobFunc
	lock     distlock.Lock

	// Stats
	runs      int64
	processed int64
	errors    int64

	// Control
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewRunner creates a scheduled job runner.
func NewRunner(name string, schedule Schedule, run JobFunc) *Runner {
	return &Runner{name: name, schedule: schedule, run: run}
}

// WithLock guards each run with a distributed lock; when another
// process holds it the run is skipped. Must be called before Start.
func (r *Runner) WithLock(lock distlock.Lock) *Runner {
	r.lock = lock
	return r
}

// Start begins the scheduling loop.
func (r *Runner) Start() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("%s already running", r.name)
	}
	r.running = true
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.mu.Unlock()

	next := r.schedule.NextRun(time.Now())
	log.Printf("[%s] Starting, first run at %s", r.name, next.Format(time.RFC3339))

	r.wg.Add(1)
	go r.loop()
	return nil
}

// Stop gracefully stops the runner, waiting for an in-flight run.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	log.Printf("[%s] Stopping...", r.name)
	r.cancel()
	r.wg.Wait()
	log.Printf("[%s] Stopped. Runs: %d, Processed: %d, Errors: %d",
		r.name, atomic.LoadInt64(&r.runs), atomic.LoadInt64(&r.processed), atomic.LoadInt64(&r.errors))
}

// Running reports whether the runner has been started.
func (r *Runner) Running() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

func (r *Runner) loop() {
	defer r.wg.Done()

	for {
		wait := time.Until(r.schedule.NextRun(time.Now()))
		timer := time.NewTimer(wait)

		select {
		case <-r.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			r.execute()
		}
	}
}

func (r *Runner) execute() {
	ctx, cancel := context.WithTimeout(r.ctx, jobTimeout)
	defer cancel()

	if r.lock != nil {
		ok, err := r.lock.Acquire(ctx)
		if err != nil {
			log.Printf("[%s] Lock acquire failed: %v", r.name, err)
			return
		}
		if !ok {
			log.Printf("[%s] Another instance holds the lock, skipping run", r.name)
			return
		}
		defer func() {
			if err := r.lock.Release(context.Background()); err != nil {
				log.Printf("[%s] Lock release failed: %v", r.name, err)
			}
		}()
	}

	atomic.AddInt64(&r.runs, 1)
	n, err := r.run(ctx)
	if err != nil {
		atomic.AddInt64(&r.errors, 1)
		log.Printf("[%s] Run failed: %v", r.name, err)
		return
	}
	atomic.AddInt64(&r.processed, int64(n))
	log.Printf("[%s] Run complete, processed %d", r.name, n)
}
