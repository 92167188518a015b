package theme

import "sync"

// Mode is the user's declared theme intent. It is what gets persisted.
type Mode string

const (
	ModeLight  Mode = "light"
	ModeDark   Mode = "dark"
	ModeSystem Mode = "system"
)

// ValidMode reports whether m is one of the three recognized modes.
func ValidMode(m Mode) bool {
	return m == ModeLight || m == ModeDark || m == ModeSystem
}

// Resolved is the render-ready appearance derived from a Mode. "system" is
// never a terminal value; it resolves against the platform preference.
type Resolved string

const (
	ResolvedLight Resolved = "light"
	ResolvedDark  Resolved = "dark"
)

// ModeKey is the fixed storage key under which the mode is persisted.
const ModeKey = "riskintel.theme-mode"

// Storage is a durable string-keyed store. Implementations may fail or be
// entirely absent; the resolver treats every failure as key-not-found on
// read and drops failures silently on write.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Signal delivers the platform color-scheme preference. Subscribe returns
// an unsubscribe function. A nil Signal means the preference is unknown
// and the resolver falls back to light.
type Signal interface {
	Current() Resolved
	Subscribe(fn func(Resolved)) (unsubscribe func())
}

// Resolver owns the mode -> tokens mapping for its lifetime. Construct one
// per process (or per test) with NewResolver and release it with Close; it
// holds no package-level state, so independent instances do not interfere.
type Resolver struct {
	mu       sync.Mutex
	mode     Mode
	system   Resolved
	resolved Resolved
	tokens   *Tokens
	storage  Storage
	unsub    func()
}

// NewResolver loads the persisted mode (absent or invalid falls back to
// system), reads the current platform preference, and subscribes to
// preference changes for the resolver's lifetime. Both collaborators may
// be nil.
func NewResolver(storage Storage, signal Signal) *Resolver {
	r := &Resolver{
		mode:    ModeSystem,
		system:  ResolvedLight,
		storage: storage,
	}

	if storage != nil {
		if v, err := storage.Get(ModeKey); err == nil && ValidMode(Mode(v)) {
			r.mode = Mode(v)
		}
	}
	if signal != nil {
		r.system = signal.Current()
		r.unsub = signal.Subscribe(r.onSystemChange)
	}
	r.recompute()
	return r
}

// Close unsubscribes from the platform signal. Safe to call more than once.
func (r *Resolver) Close() {
	r.mu.Lock()
	unsub := r.unsub
	r.unsub = nil
	r.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Mode returns the user's declared intent.
func (r *Resolver) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// ResolvedMode returns the derived appearance.
func (r *Resolver) ResolvedMode() Resolved {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved
}

// Theme returns the current token set. The pointer is stable across calls
// while the resolved mode is unchanged, so consumers can memoize on it.
func (r *Resolver) Theme() *Tokens {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens
}

// SetMode updates the intent, persists it, and recomputes the resolved
// appearance. Unrecognized modes are ignored. Persistence failures are
// swallowed; a broken store must not stop the theme from changing.
func (r *Resolver) SetMode(m Mode) {
	if !ValidMode(m) {
		return
	}
	r.mu.Lock()
	r.mode = m
	r.recompute()
	r.mu.Unlock()

	if r.storage != nil {
		_ = r.storage.Set(ModeKey, string(m))
	}
}

// Toggle flips the appearance. From system it pins the opposite of the
// current platform preference; otherwise it swaps light and dark.
func (r *Resolver) Toggle() {
	r.mu.Lock()
	var next Mode
	switch r.mode {
	case ModeSystem:
		if r.system == ResolvedDark {
			next = ModeLight
		} else {
			next = ModeDark
		}
	case ModeDark:
		next = ModeLight
	default:
		next = ModeDark
	}
	r.mu.Unlock()

	r.SetMode(next)
}

func (r *Resolver) onSystemChange(pref Resolved) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.system = pref
	// recompute is a no-op for explicit modes; only system tracks the signal
	r.recompute()
}

// recompute derives resolved/tokens from mode and system. Callers hold mu.
func (r *Resolver) recompute() {
	if r.mode == ModeSystem {
		r.resolved = r.system
	} else {
		r.resolved = Resolved(r.mode)
	}
	r.tokens = TokensFor(r.resolved)
}

// Resolve maps a mode to an appearance against an explicit platform hint.
// It is the pure core of the resolver, used directly by HTTP handlers that
// resolve a per-user mode against a client-reported preference.
func Resolve(m Mode, systemPref Resolved) Resolved {
	if m == ModeSystem {
		if systemPref == ResolvedDark {
			return ResolvedDark
		}
		return ResolvedLight
	}
	if m == ModeDark {
		return ResolvedDark
	}
	return ResolvedLight
}
