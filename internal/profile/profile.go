// Package profile defines the simulated client populations.
//
// A profile is declarative data: a wait-time distribution, a weighted task
// mix, and the chaos setup the scenario assumes. Tasks issue requests
// through the order-service client and turn the observed response into a
// pass/fail verdict; they hold no state beyond the per-user session.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/ordersim/swarm/internal/chaos"
	"github.com/ordersim/swarm/internal/client"
)

// Wait is a wait-time distribution between task executions.
// Min == Max means a constant wait.
type Wait struct {
	Min time.Duration
	Max time.Duration
}

// Between returns a uniform wait-time distribution.
func Between(min, max time.Duration) Wait {
	return Wait{Min: min, Max: max}
}

// Constant returns a fixed wait time.
func Constant(d time.Duration) Wait {
	return Wait{Min: d, Max: d}
}

// Next draws a wait time from the distribution.
func (w Wait) Next(rng *rand.Rand) time.Duration {
	if w.Max <= w.Min {
		return w.Min
	}
	return w.Min + time.Duration(rng.Int63n(int64(w.Max-w.Min)))
}

func (w Wait) String() string {
	if w.Max <= w.Min {
		return fmt.Sprintf("constant %s", w.Min)
	}
	return fmt.Sprintf("between %s and %s", w.Min, w.Max)
}

// Result is the verdict for one executed task.
type Result struct {
	// Request is the metric name the execution is grouped under,
	// e.g. "/order/create [empty]".
	Request string

	// Passed is the test-assertion verdict: the response matched the
	// scenario's expectation.
	Passed bool

	// Detail explains a failed verdict.
	Detail string

	Duration time.Duration
	Bytes    int64
}

// TaskFunc executes one request using the per-user session state.
type TaskFunc func(ctx context.Context, c *client.Client, sess *Session) Result

// Task is one weighted entry in a profile's request mix.
type Task struct {
	// Name matches the metric name its results are grouped under.
	Name   string
	Weight int
	Run    TaskFunc
}

// Profile is a declarative traffic specification for one scenario.
type Profile struct {
	Name        string
	Description string
	Wait        Wait
	Tasks       []Task

	// Chaos is the fault-injection setup this scenario assumes is in
	// place; it is applied only when the operator asks for it.
	Chaos chaos.Plan
}

// TotalWeight returns the sum of all task weights.
func (p *Profile) TotalWeight() int {
	total := 0
	for _, t := range p.Tasks {
		total += t.Weight
	}
	return total
}

// Pick selects a task according to the weights.
func (p *Profile) Pick(rng *rand.Rand) *Task {
	total := p.TotalWeight()
	if total <= 0 {
		return nil
	}
	n := rng.Intn(total)
	for i := range p.Tasks {
		n -= p.Tasks[i].Weight
		if n < 0 {
			return &p.Tasks[i]
		}
	}
	return &p.Tasks[len(p.Tasks)-1]
}

// Validate checks the profile is runnable.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile has no name")
	}
	if len(p.Tasks) == 0 {
		return fmt.Errorf("profile %s has no tasks", p.Name)
	}
	seen := make(map[string]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if t.Weight <= 0 {
			return fmt.Errorf("profile %s: task %s has non-positive weight", p.Name, t.Name)
		}
		if t.Run == nil {
			return fmt.Errorf("profile %s: task %s has no run function", p.Name, t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("profile %s: duplicate task name %s", p.Name, t.Name)
		}
		seen[t.Name] = true
	}
	if p.Wait.Min < 0 || p.Wait.Max < p.Wait.Min {
		return fmt.Errorf("profile %s: invalid wait distribution", p.Name)
	}
	return nil
}

// maxCachedOrders bounds the per-user order-id cache.
const maxCachedOrders = 100

// Session is the per-user state a task can touch: a seeded RNG and the
// bounded cache of order ids returned by successful creations.
type Session struct {
	rng      *rand.Rand
	orderIDs []string
	log      *slog.Logger
}

// NewSession creates a session with its own RNG.
func NewSession(seed int64, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		rng: rand.New(rand.NewSource(seed)),
		log: log,
	}
}

// Rand returns the session's RNG.
func (s *Session) Rand() *rand.Rand {
	return s.rng
}

// Log returns the session's logger.
func (s *Session) Log() *slog.Logger {
	return s.log
}

// RememberOrder caches a server-assigned order id, up to the cache bound.
func (s *Session) RememberOrder(id string) {
	if id == "" || len(s.orderIDs) >= maxCachedOrders {
		return
	}
	s.orderIDs = append(s.orderIDs, id)
}

// PickOrder returns a random cached order id, or false when none exist.
func (s *Session) PickOrder() (string, bool) {
	if len(s.orderIDs) == 0 {
		return "", false
	}
	return s.orderIDs[s.rng.Intn(len(s.orderIDs))], true
}

// CachedOrders returns the number of cached order ids.
func (s *Session) CachedOrders() int {
	return len(s.orderIDs)
}
