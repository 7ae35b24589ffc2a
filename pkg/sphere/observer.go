package sphere

import (
	"sync"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Observer is a world-space position source that drives level of detail.
// It is queried on every distance test, never snapshotted.
type Observer interface {
	Position() v3.Vec
}

// PointObserver is an Observer that can be moved between updates.
type PointObserver struct {
	mu  sync.RWMutex
	pos v3.Vec
}

// NewPointObserver returns an observer at p.
func NewPointObserver(p v3.Vec) *PointObserver {
	return &PointObserver{pos: p}
}

// Position returns the current position.
func (o *PointObserver) Position() v3.Vec {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pos
}

// MoveTo sets the position seen by subsequent distance tests.
func (o *PointObserver) MoveTo(p v3.Vec) {
	o.mu.Lock()
	o.pos = p
	o.mu.Unlock()
}
