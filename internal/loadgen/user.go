package loadgen

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ordersim/swarm/internal/client"
	"github.com/ordersim/swarm/internal/metrics"
	"github.com/ordersim/swarm/internal/profile"
)

// User is one simulated client. Each user owns a session (seeded RNG plus
// the bounded order-id cache) and loops: pick a weighted task, execute it,
// record the verdict, wait.
type User struct {
	ID int

	prof  *profile.Profile
	cli   *client.Client
	eng   *metrics.Engine
	sess  *profile.Session
	log   *slog.Logger
	delay delayFunc

	stopCh  chan struct{}
	doneCh  chan struct{}
	stopped atomic.Bool

	iterations atomic.Int64
}

// delayFunc waits between tasks; factored out so tests can skip real time.
type delayFunc func(ctx context.Context, stopCh <-chan struct{}, d time.Duration)

func sleepDelay(ctx context.Context, stopCh <-chan struct{}, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-stopCh:
	case <-t.C:
	}
}

func newUser(id int, prof *profile.Profile, cli *client.Client, eng *metrics.Engine, log *slog.Logger, seed int64) *User {
	return &User{
		ID:     id,
		prof:   prof,
		cli:    cli,
		eng:    eng,
		sess:   profile.NewSession(seed, log),
		log:    log,
		delay:  sleepDelay,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Run loops until the context is cancelled or the user is stopped.
func (u *User) Run(ctx context.Context) {
	defer close(u.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-u.stopCh:
			return
		default:
		}

		task := u.prof.Pick(u.sess.Rand())
		if task == nil {
			return
		}

		res := task.Run(ctx, u.cli, u.sess)
		if ctx.Err() != nil {
			// The request was cut short by shutdown; don't count it.
			return
		}

		u.eng.Record(res.Request, res.Duration, res.Passed, res.Bytes)
		u.iterations.Add(1)

		if !res.Passed {
			u.log.Debug("request failed",
				"user", u.ID, "request", res.Request, "detail", res.Detail)
		}

		u.delay(ctx, u.stopCh, u.prof.Wait.Next(u.sess.Rand()))
	}
}

// Stop asks the user to exit after the in-flight task completes.
func (u *User) Stop() {
	if u.stopped.CompareAndSwap(false, true) {
		close(u.stopCh)
	}
}

// Done returns a channel closed when the user's loop has exited.
func (u *User) Done() <-chan struct{} {
	return u.doneCh
}

// Iterations returns the number of completed task executions.
func (u *User) Iterations() int64 {
	return u.iterations.Load()
}
