package engage

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// Dedup remembers fingerprints of content that was already acted on. Entries
// are never evicted, so memory grows with the number of distinct
// fingerprints until the process restarts.
//
// Fingerprints of an action still in flight are held as reservations until
// the action is recorded or released.
type Dedup struct {
	seen *xsync.MapOf[string, string]

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewDedup() *Dedup {
	return &Dedup{
		seen:    xsync.NewMapOf[string, string](),
		pending: make(map[string]struct{}),
	}
}

// IsDuplicate reports whether any of fps was recorded before or is reserved
// by an action in flight.
func (d *Dedup) IsDuplicate(fps []string) bool {
	for _, fp := range fps {
		if _, ok := d.seen.Load(fp); ok {
			return true
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, fp := range fps {
		if _, ok := d.pending[fp]; ok {
			return true
		}
	}
	return false
}

// Reserve claims fps for an action about to run. It claims nothing and
// returns false if any of them is recorded or already reserved.
func (d *Dedup) Reserve(fps []string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, fp := range fps {
		if _, ok := d.seen.Load(fp); ok {
			return false
		}
		if _, ok := d.pending[fp]; ok {
			return false
		}
	}
	for _, fp := range fps {
		d.pending[fp] = struct{}{}
	}
	return true
}

// Release drops the reservations on fps without recording them.
func (d *Dedup) Release(fps []string) {
	d.mu.Lock()
	for _, fp := range fps {
		delete(d.pending, fp)
	}
	d.mu.Unlock()
}

// Record stores fps, attributing each to itemID unless an earlier item
// already claimed it, and clears their reservations.
func (d *Dedup) Record(itemID string, fps []string) {
	for _, fp := range fps {
		d.seen.LoadOrStore(fp, itemID)
	}
	d.Release(fps)
}

// FirstSeen returns the item that first produced fp.
func (d *Dedup) FirstSeen(fp string) (string, bool) {
	return d.seen.Load(fp)
}

// Len returns the number of recorded fingerprints.
func (d *Dedup) Len() int { return d.seen.Size() }

