// Package lifecycle tracks whether the gateway is draining. While
// draining, new interview sessions are refused and readiness reports
// unavailable so a load balancer stops routing candidates here.
package lifecycle

import "sync/atomic"

type State struct {
	draining atomic.Bool
}

func New() *State { return &State{} }

func (s *State) SetDraining() { s.draining.Store(true) }

func (s *State) Draining() bool { return s.draining.Load() }
