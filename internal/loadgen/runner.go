package loadgen

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ordersim/swarm/internal/client"
	"github.com/ordersim/swarm/internal/metrics"
	"github.com/ordersim/swarm/internal/profile"
)

// tickInterval is how often the ramp controller re-evaluates the shape.
const tickInterval = 100 * time.Millisecond

// defaultGracefulStop bounds the wait for in-flight tasks at shutdown.
const defaultGracefulStop = 30 * time.Second

// Runner drives a user pool through a load shape.
//
// Every tick it asks the shape for the target user count, spawns new users
// up to the stage's spawn rate, and stops surplus users immediately on
// ramp-down. All users share the HTTP client's connection pool; each has
// its own RNG and order-id cache.
type Runner struct {
	prof *profile.Profile
	shap *Shape
	cli  *client.Client
	eng  *metrics.Engine
	log  *slog.Logger

	// GracefulStop bounds the shutdown wait; zero means the default.
	GracefulStop time.Duration

	// Seed makes user RNGs reproducible; zero means time-based.
	Seed int64

	users  []*User
	nextID int
	mu     sync.Mutex
	wg     sync.WaitGroup

	// startNanos is the run start in unix nanos; Progress reads it from
	// other goroutines, so it is atomic. Zero means not started.
	startNanos atomic.Int64
	running    atomic.Bool

	// spawnBudget accumulates fractional spawns across ticks so a rate
	// of 2/s still means 2/s at a 100ms tick.
	spawnBudget float64
}

// NewRunner creates a runner for one profile and shape.
func NewRunner(prof *profile.Profile, shap *Shape, cli *client.Client, eng *metrics.Engine, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		prof: prof,
		shap: shap,
		cli:  cli,
		eng:  eng,
		log:  log,
	}
}

// Run blocks until the shape is exhausted or the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.prof.Validate(); err != nil {
		return err
	}
	if err := r.shap.Validate(); err != nil {
		return err
	}

	seed := r.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	start := time.Now()
	r.startNanos.Store(start.UnixNano())
	r.running.Store(true)
	defer r.running.Store(false)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			target, rate, done := r.shap.Tick(time.Since(start))
			if done {
				break loop
			}
			r.adjust(ctx, target, rate, seed)
		}
	}

	r.shutdown()
	return ctx.Err()
}

// adjust moves the pool toward the target user count.
func (r *Runner) adjust(ctx context.Context, target int, rate float64, seed int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := len(r.users)

	switch {
	case target > current:
		r.spawnBudget += rate * tickInterval.Seconds()
		allowed := int(r.spawnBudget)
		if allowed > target-current {
			allowed = target - current
		}
		for i := 0; i < allowed; i++ {
			r.nextID++
			u := newUser(r.nextID, r.prof, r.cli, r.eng, r.log, seed+int64(r.nextID))
			r.users = append(r.users, u)
			r.wg.Add(1)
			go func() {
				defer r.wg.Done()
				u.Run(ctx)
			}()
		}
		r.spawnBudget -= float64(allowed)

	case target < current:
		// Stop surplus users from the end of the pool; ramp-down is
		// immediate, matching the shape's intent.
		for _, u := range r.users[target:] {
			u.Stop()
		}
		r.users = r.users[:target]
		r.spawnBudget = 0

	default:
		r.spawnBudget = 0
	}

	r.eng.SetActiveUsers(len(r.users))
}

// shutdown stops all users and waits for in-flight tasks.
func (r *Runner) shutdown() {
	r.mu.Lock()
	for _, u := range r.users {
		u.Stop()
	}
	r.users = nil
	r.mu.Unlock()

	graceful := r.GracefulStop
	if graceful == 0 {
		graceful = defaultGracefulStop
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(graceful):
		r.log.Warn("users did not stop within graceful period", "timeout", graceful)
	}

	r.eng.SetActiveUsers(0)
}

// ActiveUsers returns the current pool size.
func (r *Runner) ActiveUsers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// Progress returns run completion from 0.0 to 1.0. Safe to call from any
// goroutine while Run is in flight.
func (r *Runner) Progress() float64 {
	startNanos := r.startNanos.Load()
	if startNanos == 0 {
		return 0.0
	}
	total := r.shap.Total()
	if total == 0 || !r.running.Load() {
		return 1.0
	}
	p := float64(time.Since(time.Unix(0, startNanos))) / float64(total)
	if p > 1.0 {
		p = 1.0
	}
	return p
}

// Running reports whether the runner is mid-run.
func (r *Runner) Running() bool {
	return r.running.Load()
}
