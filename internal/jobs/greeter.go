package jobs

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultKnownFollowers = 50000

// Greeter tracks follower ids already seen so only newcomers are greeted.
// The set is bounded; an evicted follower that is seen again is treated as
// new, and the bot's dedup cache keeps it from being greeted twice.
type Greeter struct {
	known  *lru.Cache[string, struct{}]
	seeded bool
}

func NewGreeter(size int) (*Greeter, error) {
	if size <= 0 {
		size = defaultKnownFollowers
	}
	c, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &Greeter{known: c}, nil
}

// Observe records ids and returns the ones not seen before. The first call
// returns nothing.
func (g *Greeter) Observe(ids []string) []string {
	var fresh []string
	for _, id := range ids {
		if g.known.Contains(id) {
			continue
		}
		g.known.Add(id, struct{}{})
		if g.seeded {
			fresh = append(fresh, id)
		}
	}
	g.seeded = true
	return fresh
}

// Len returns the number of remembered followers.
func (g *Greeter) Len() int { return g.known.Len() }
