package pool

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Pool runs named tasks in deadline order on a fixed number of goroutines.
// Each task function returns the deadline of its next run; a zero deadline
// removes the task from the pool. The service uses one task per bundle, with
// the bundle's rebuild interval setting the next deadline.
type Pool struct {
	ctx   context.Context
	mu    sync.Mutex
	queue []*task
	reg   map[string]*task
	wait  chan struct{}
}

type task struct {
	name     string
	fn       func(context.Context) time.Time
	deadline time.Time
	rerun    bool
}

// New starts workers goroutines that run until ctx is cancelled.
func New(ctx context.Context, workers int) *Pool {
	pool := Pool{ctx: ctx, reg: make(map[string]*task)}

	for range workers {
		go pool.work()
	}

	return &pool
}

// Add schedules the named task for immediate execution.
func (p *Pool) Add(name string, fn func(context.Context) time.Time) {
	p.enqueue(&task{name: name, fn: fn, deadline: time.Now()})
}

func (p *Pool) work() {
	for {
		t := p.dequeue()
		if t == nil {
			return
		}
		p.enqueue(t.execute(p.ctx))
	}
}

// Trigger runs the named task NOW, if it is queued, regardless of its
// deadline, by pulling it to the front of the queue. If the named task is not
// queued, it is running right now. In that case its next deadline is
// overridden to NOW, causing an immediate re-run after the current run.
// Subsequent runs use the deadlines the task's fn returns.
func (p *Pool) Trigger(n string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i := slices.IndexFunc(p.queue, func(t *task) bool { return t.name == n }); i != -1 {
		p.queue[i].deadline = time.Now()
		p.sortAndWake()
		return nil
	}
	// not queued, so it must be running at the moment
	if t, ok := p.reg[n]; ok {
		t.rerun = true
		return nil
	}

	return fmt.Errorf("no task with name %s", n)
}

// sortAndWake requires p.mu to be held.
func (p *Pool) sortAndWake() {
	slices.SortFunc(p.queue, func(a, b *task) int {
		return a.deadline.Compare(b.deadline)
	})

	// Wake up any waiting goroutine.
	if p.wait != nil {
		close(p.wait)
		p.wait = nil
	}
}

func (p *Pool) enqueue(t *task) {
	if t.deadline.IsZero() {
		// Task requested removal from the pool.
		p.mu.Lock()
		delete(p.reg, t.name)
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	p.reg[t.name] = t
	p.queue = append(p.queue, t)
	p.sortAndWake()
	p.mu.Unlock()
}

// dequeue blocks until a task is due, returning nil once the pool's context
// is cancelled.
func (p *Pool) dequeue() *task {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {

		var t *task
		if len(p.queue) == 0 {
			t = &task{deadline: time.Now().Add(time.Hour * 24 * 365)} // far future placeholder
		} else {
			t = p.queue[0]
		}

		if t.deadline.After(time.Now()) {
			// Not ready yet. Wait for the deadline, or for an earlier task to arrive.

			if p.wait == nil {
				p.wait = make(chan struct{})
			}

			wait := p.wait

			p.mu.Unlock()

			timer := time.NewTimer(time.Until(t.deadline))
			select {
			case <-timer.C:
			case <-wait:
				timer.Stop()
			case <-p.ctx.Done():
				timer.Stop()
				p.mu.Lock() // re-acquire for the deferred unlock
				return nil
			}

			p.mu.Lock()
			continue
		}

		// The first queued task is due, remove it from the queue.
		break
	}

	var t *task
	t, p.queue = p.queue[0], p.queue[1:]
	return t
}

func (t *task) execute(ctx context.Context) *task {
	t.deadline = t.fn(ctx)
	if t.rerun {
		t.rerun = false
		t.deadline = time.Now()
	}
	return t
}
