package dungeon

import "sync"

var (
	defaultMu      sync.RWMutex
	defaultService *Service
)

// SetDefault installs the process-wide service instance consumed by the
// external collaborators wired in the same binary.
func SetDefault(s *Service) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultService = s
}

// Default returns the process-wide service instance, or nil before wiring.
func Default() *Service {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultService
}
