package hierarchy

import "sync"

// visitedSet records the LEIs already expanded during one build.
type visitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[string]struct{})}
}

// mark records lei and reports whether it was new. Check and insert happen
// under one lock.
func (v *visitedSet) mark(lei string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[lei]; ok {
		return false
	}
	v.seen[lei] = struct{}{}
	return true
}

func (v *visitedSet) has(lei string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.seen[lei]
	return ok
}

func (v *visitedSet) len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}
