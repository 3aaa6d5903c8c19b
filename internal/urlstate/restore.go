package urlstate

import "sync"

// Phase is a step of restoring state from a fragment
type Phase int

const (
	Idle Phase = iota
	Parsing
	Restoring
)

func (p Phase) String() string {
	switch p {
	case Parsing:
		return "parsing"
	case Restoring:
		return "restoring"
	default:
		return "idle"
	}
}

// Restorer guards fragment restoration. Parsing starts only from Idle once
// live options are available, so a fragment change caused by a restore
// cannot trigger another one.
type Restorer struct {
	mu           sync.Mutex
	phase        Phase
	optionsReady bool
}

// OptionsReady records that live options were loaded
func (r *Restorer) OptionsReady() {
	r.mu.Lock()
	r.optionsReady = true
	r.mu.Unlock()
}

// Begin moves Idle to Parsing. It reports false while options are missing
// or another restoration is in flight.
func (r *Restorer) Begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.optionsReady || r.phase != Idle {
		return false
	}
	r.phase = Parsing
	return true
}

// Restore moves Parsing to Restoring
func (r *Restorer) Restore() {
	r.mu.Lock()
	if r.phase == Parsing {
		r.phase = Restoring
	}
	r.mu.Unlock()
}

// Finish returns to Idle
func (r *Restorer) Finish() {
	r.mu.Lock()
	r.phase = Idle
	r.mu.Unlock()
}

// Phase returns the current phase
func (r *Restorer) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}
