package alerts

import "sync"

// Settings holds the runtime notification-channel toggles. It is an
// explicit object threaded through the orchestrator and dispatcher
// instead of package-global flags, so both states are testable. Toggle
// changes are process-wide and do not survive restarts.
type Settings struct {
	mu    sync.RWMutex
	email bool
	sms   bool
}

// NewSettings creates the toggle state with its startup defaults
func NewSettings(email, sms bool) *Settings {
	return &Settings{email: email, sms: sms}
}

// Snapshot returns the current (email, sms) toggle pair
func (s *Settings) Snapshot() (email, sms bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email, s.sms
}

// Update replaces both toggles atomically
func (s *Settings) Update(email, sms bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = email
	s.sms = sms
}
