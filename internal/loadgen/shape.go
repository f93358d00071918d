// Package loadgen runs simulated users against the order service.
//
// It is deliberately a minimal runner: one ramp-controlled user pool
// driven by a stage table. The load shapes and traffic profiles are the
// content; everything else is plumbing.
package loadgen

import (
	"fmt"
	"time"
)

// Stage is one row of a ramp schedule. Until is the point in run time the
// stage lasts to, so a table reads as "10 users until 60s, 25 until 120s".
type Stage struct {
	Until     time.Duration
	Users     int
	SpawnRate float64 // users spawned per second while ramping up
}

// Shape is a time-to-user-count table controlling ramp-up and ramp-down.
type Shape struct {
	Name   string
	Stages []Stage
}

// Tick returns the target user count and spawn rate for the given run
// time. done is true once the schedule is exhausted.
func (s *Shape) Tick(elapsed time.Duration) (users int, spawnRate float64, done bool) {
	for _, stage := range s.Stages {
		if elapsed < stage.Until {
			return stage.Users, stage.SpawnRate, false
		}
	}
	return 0, 0, true
}

// Total returns the full schedule duration.
func (s *Shape) Total() time.Duration {
	if len(s.Stages) == 0 {
		return 0
	}
	return s.Stages[len(s.Stages)-1].Until
}

// Validate checks the stage table is monotonic and well-formed.
func (s *Shape) Validate() error {
	if len(s.Stages) == 0 {
		return fmt.Errorf("shape %s has no stages", s.Name)
	}
	var prev time.Duration
	for i, stage := range s.Stages {
		if stage.Until <= prev {
			return fmt.Errorf("shape %s: stage %d must end after %s", s.Name, i, prev)
		}
		if stage.Users < 0 {
			return fmt.Errorf("shape %s: stage %d has negative user count", s.Name, i)
		}
		if stage.SpawnRate <= 0 {
			return fmt.Errorf("shape %s: stage %d has non-positive spawn rate", s.Name, i)
		}
		prev = stage.Until
	}
	return nil
}

// Fixed returns a single-stage shape: ramp to users and hold for duration.
func Fixed(users int, spawnRate float64, duration time.Duration) *Shape {
	return &Shape{
		Name:   "fixed",
		Stages: []Stage{{Until: duration, Users: users, SpawnRate: spawnRate}},
	}
}

// StepShape gradually increases load to find where behavior degrades.
func StepShape() *Shape {
	return &Shape{
		Name: "step",
		Stages: []Stage{
			{Until: 60 * time.Second, Users: 10, SpawnRate: 2},
			{Until: 120 * time.Second, Users: 25, SpawnRate: 3},
			{Until: 180 * time.Second, Users: 50, SpawnRate: 5},
			{Until: 240 * time.Second, Users: 75, SpawnRate: 5},
			{Until: 300 * time.Second, Users: 100, SpawnRate: 5},
		},
	}
}

// SpikeShape alternates baseline and spike load to exercise the bulkhead
// and circuit breaker under sudden pressure.
func SpikeShape() *Shape {
	return &Shape{
		Name: "spike",
		Stages: []Stage{
			{Until: 30 * time.Second, Users: 10, SpawnRate: 2},
			{Until: 60 * time.Second, Users: 100, SpawnRate: 20},
			{Until: 90 * time.Second, Users: 10, SpawnRate: 10},
			{Until: 120 * time.Second, Users: 100, SpawnRate: 20},
			{Until: 150 * time.Second, Users: 10, SpawnRate: 10},
		},
	}
}

// LookupShape finds a built-in shape by name.
func LookupShape(name string) (*Shape, error) {
	switch name {
	case "step":
		return StepShape(), nil
	case "spike":
		return SpikeShape(), nil
	default:
		return nil, fmt.Errorf("unknown shape: %s", name)
	}
}
