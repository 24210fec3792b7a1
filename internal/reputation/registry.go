// Package reputation keeps the whitelist (friends) and blacklist snapshots.
//
// Each list is an immutable map published through an atomic pointer. A
// refresh builds a complete new map and swaps it in, so a reader sees either
// the previous snapshot or the new one, never a mix.
package reputation

import (
	"strings"
	"sync/atomic"

	"tweetgate/internal/model"
)

// Snapshot is one published list, indexed by normalized handle and by
// account id.
type Snapshot struct {
	byHandle map[string]model.Account
	byID     map[string]model.Account
	n        int
}

// NewSnapshot builds a snapshot from accounts. Accounts with neither a handle
// nor an id are skipped.
func NewSnapshot(accounts []model.Account) Snapshot {
	s := Snapshot{
		byHandle: make(map[string]model.Account, len(accounts)),
		byID:     make(map[string]model.Account, len(accounts)),
	}
	for _, a := range accounts {
		h := normalize(a.Handle)
		if h == "" && a.ID == "" {
			continue
		}
		if h != "" {
			s.byHandle[h] = a
		}
		if a.ID != "" {
			s.byID[a.ID] = a
		}
		s.n++
	}
	return s
}

// Len returns the number of accounts the snapshot was built from.
func (s Snapshot) Len() int { return s.n }

// Has reports whether handle is in the snapshot.
func (s Snapshot) Has(handle string) bool {
	_, ok := s.byHandle[normalize(handle)]
	return ok
}

// HasAccount matches a by id first, then by handle. Accounts known only by id
// (follower id listings) are still found.
func (s Snapshot) HasAccount(a model.Account) bool {
	if a.ID != "" {
		if _, ok := s.byID[a.ID]; ok {
			return true
		}
	}
	return a.Handle != "" && s.Has(a.Handle)
}

// Registry answers membership queries against the current snapshots.
// The zero value is ready to use and holds empty lists.
type Registry struct {
	whitelist atomic.Pointer[Snapshot]
	blacklist atomic.Pointer[Snapshot]
}

func NewRegistry() *Registry { return &Registry{} }

// IsFriend reports whether handle is in the whitelist.
func (r *Registry) IsFriend(handle string) bool { return lookup(&r.whitelist, handle) }

// IsBlacklisted reports whether handle is in the blacklist.
func (r *Registry) IsBlacklisted(handle string) bool { return lookup(&r.blacklist, handle) }

// IsBlacklistedAccount reports whether a is in the blacklist by id or handle.
func (r *Registry) IsBlacklistedAccount(a model.Account) bool {
	return load(&r.blacklist).HasAccount(a)
}

// ReplaceWhitelist swaps in a new whitelist built from accounts.
func (r *Registry) ReplaceWhitelist(accounts []model.Account) {
	s := NewSnapshot(accounts)
	r.whitelist.Store(&s)
}

// ReplaceBlacklist swaps in a new blacklist built from accounts.
func (r *Registry) ReplaceBlacklist(accounts []model.Account) {
	s := NewSnapshot(accounts)
	r.blacklist.Store(&s)
}

// Whitelist returns the current whitelist snapshot. Callers must not modify it.
func (r *Registry) Whitelist() Snapshot { return load(&r.whitelist) }

// Blacklist returns the current blacklist snapshot. Callers must not modify it.
func (r *Registry) Blacklist() Snapshot { return load(&r.blacklist) }

func load(p *atomic.Pointer[Snapshot]) Snapshot {
	s := p.Load()
	if s == nil {
		return Snapshot{}
	}
	return *s
}

func lookup(p *atomic.Pointer[Snapshot], handle string) bool {
	return load(p).Has(handle)
}

func normalize(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}
