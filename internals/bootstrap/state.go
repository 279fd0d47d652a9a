package bootstrap

import "sync/atomic"

// State holds application-level flags resolved once at boot and passed by
// reference to the handlers that need them. It replaces ad-hoc package
// globals: nothing outside this struct may carry cross-request state.
type State struct {
	needsSetup atomic.Bool
}

// NewState builds the boot state. needsSetup is true when no admin account
// exists yet; the app then serves only the first-admin setup flow.
func NewState(needsSetup bool) *State {
	s := &State{}
	s.needsSetup.Store(needsSetup)
	return s
}

func (s *State) NeedsSetup() bool { return s.needsSetup.Load() }

// MarkSetupComplete flips the flag after the first admin is created.
// It is the only mutation State supports.
func (s *State) MarkSetupComplete() { s.needsSetup.Store(false) }
