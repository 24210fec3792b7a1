// Package analytics summarizes the action journal.
package analytics

import (
	"sort"
	"time"

	"tweetgate/internal/store"
)

// Bucket counts journaled actions for one hour.
type Bucket struct {
	Hour   time.Time
	ByKind map[string]int
	Failed int
}

// Total returns the successful actions in the bucket.
func (b Bucket) Total() int {
	n := 0
	for _, c := range b.ByKind {
		n += c
	}
	return n
}

// HourlyActions groups actions into UTC hour buckets, oldest first. Only
// successful actions are counted by kind; failures are tallied separately.
func HourlyActions(actions []store.Action) []Bucket {
	idx := make(map[time.Time]*Bucket)
	for _, a := range actions {
		ts := a.TS.UTC()
		key := time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), 0, 0, 0, time.UTC)
		b, ok := idx[key]
		if !ok {
			b = &Bucket{Hour: key, ByKind: make(map[string]int)}
			idx[key] = b
		}
		if a.OK {
			b.ByKind[a.Kind]++
		} else {
			b.Failed++
		}
	}
	out := make([]Bucket, 0, len(idx))
	for _, b := range idx {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour.Before(out[j].Hour) })
	return out
}

// TopHandles returns the n handles with the most successful actions.
func TopHandles(actions []store.Action, n int) []HandleCount {
	counts := make(map[string]int)
	for _, a := range actions {
		if a.OK && a.Handle != "" {
			counts[a.Handle]++
		}
	}
	out := make([]HandleCount, 0, len(counts))
	for h, c := range counts {
		out = append(out, HandleCount{Handle: h, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Handle < out[j].Handle
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

type HandleCount struct {
	Handle string
	Count  int
}
