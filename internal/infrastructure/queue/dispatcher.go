package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrStopped is returned by Enqueue after Stop, or once the context passed to
// Start has ended.
var ErrStopped = errors.New("dispatcher stopped")

// Job is a unit of background work. Jobs with the same Key run on the same
// worker, in enqueue order.
type Job struct {
	Key  string
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher routes jobs to a fixed set of workers using consistent hashing
// on the job key.
type Dispatcher struct {
	workers []chan Job
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	done    <-chan struct{}
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan Job, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan Job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Once ctx ends Enqueue refuses new
// jobs; workers keep draining what is queued until Stop closes their channels.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	d.done = ctx.Done()
	d.mu.Unlock()
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a job to the worker responsible for its key. It blocks while
// that worker's buffer is full, until ctx ends.
func (d *Dispatcher) Enqueue(ctx context.Context, job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	select {
	case <-d.done:
		return ErrStopped
	default:
	}
	select {
	case d.workers[d.shardIndex(job.Key)] <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the worker channels and waits for queued jobs to drain.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Depth returns the number of jobs waiting across all workers.
func (d *Dispatcher) Depth() int {
	n := 0
	for _, ch := range d.workers {
		n += len(ch)
	}
	return n
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan Job) {
	defer d.wg.Done()
	for job := range ch {
		d.run(ctx, id, job)
	}
}

func (d *Dispatcher) run(ctx context.Context, id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Interface("panic", r).
				Str("job", job.Name).
				Str("key", job.Key).
				Int("worker_id", id).
				Msg("job panicked")
		}
	}()
	if err := job.Run(ctx); err != nil {
		d.log.Error().Err(err).
			Str("job", job.Name).
			Str("key", job.Key).
			Int("worker_id", id).
			Msg("job failed")
	}
}
