package build

import "sync"

// Outcome of one build unit.
type Result struct {
	Element string // Element output directory name.
	Image   string // Image name.
	Status  Status
	Err     error // Cause for failed or cancelled units, nil otherwise.
}

// Records unit completions during a run.
//
// The ledger is the only shared structure written concurrently. Entries are
// keyed by element+image identity and append-only: replaying a completion
// for an already recorded unit is a no-op, making retries idempotent.
type ledger struct {
	mu      sync.Mutex
	results map[string]Result
}

func newLedger() *ledger {
	return &ledger{results: make(map[string]Result)}
}

// Records a unit completion. Recording the same unit twice is a no-op.
func (l *ledger) record(u *unit, status Status, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := u.key()
	if _, ok := l.results[key]; ok {
		return
	}
	l.results[key] = Result{
		Element: u.elementDir,
		Image:   u.image.Name,
		Status:  status,
		Err:     err,
	}
}

// Returns the recorded result for a unit.
func (l *ledger) get(u *unit) (Result, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.results[u.key()]
	return r, ok
}
