package commit

import (
	"sync"

	"github.com/temirov/commitpkg/internal/semver"
)

// Session carries the process-wide commit state threaded through the
// orchestrators. The committing flag is read by the interrupt watcher from
// its own goroutine, so access is mutex-guarded.
type Session struct {
	stateMutex      sync.Mutex
	committing      bool
	baselineVersion semver.Version
}

// NewSession constructs a Session remembering the manifest version observed
// before any derivation was applied.
func NewSession(baselineVersion semver.Version) *Session {
	return &Session{baselineVersion: baselineVersion}
}

// SetCommitting records whether a commit invocation is currently in flight.
func (session *Session) SetCommitting(committing bool) {
	session.stateMutex.Lock()
	defer session.stateMutex.Unlock()
	session.committing = committing
}

// Committing reports whether a commit invocation is currently in flight.
func (session *Session) Committing() bool {
	session.stateMutex.Lock()
	defer session.stateMutex.Unlock()
	return session.committing
}

// BaselineVersion returns the manifest version recorded at startup.
func (session *Session) BaselineVersion() semver.Version {
	return session.baselineVersion
}
