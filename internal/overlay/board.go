package overlay

import "sync"

// Board holds the single overlay currently shown to one visitor.
type Board struct {
	mu     sync.Mutex
	active *Overlay
}

// Show makes o the active overlay, removing any previous one first.
// It reports whether an overlay was replaced.
func (b *Board) Show(o Overlay) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	replaced := b.active != nil
	b.active = &o
	return replaced
}

func (b *Board) Active() (Overlay, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active == nil {
		return Overlay{}, false
	}
	return *b.active, true
}

// Dismiss removes the active overlay if its id matches. A stale id from an
// already replaced overlay leaves the board untouched.
func (b *Board) Dismiss(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active == nil || b.active.ID != id {
		return false
	}
	b.active = nil
	return true
}

// Offer shows o unless a result is currently displayed, which it leaves in
// place. It reports whether o was shown.
func (b *Board) Offer(o Overlay) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active != nil && b.active.Kind == KindResult {
		return false
	}
	b.active = &o
	return true
}
