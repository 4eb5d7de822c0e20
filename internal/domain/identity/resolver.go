// Package identity maps transient participant handles to stable usernames
// while a match is replayed.
package identity

import (
	"fmt"
	"sort"

	"github.com/okian/replaystats/internal/domain/model"
)

// Resolver tracks which handles are currently active. It is not safe for
// concurrent use; an engine owns exactly one.
type Resolver struct {
	active map[model.PlayerID]string
	seen   map[string]struct{}
	order  []string
}

// NewResolver returns an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		active: make(map[model.PlayerID]string),
		seen:   make(map[string]struct{}),
	}
}

// Bootstrap applies joins that precede the start of the replay. Later
// entries overwrite earlier ones for the same handle.
func (r *Resolver) Bootstrap(joins []model.Join) {
	for _, j := range joins {
		r.active[j.Player] = j.Username
		r.remember(j.Username)
	}
}

// Join activates handle as name. A join for an already active handle keeps
// the original mapping and returns ErrDuplicateJoin.
func (r *Resolver) Join(stamp model.Stamp, handle model.PlayerID, name string) error {
	if cur, ok := r.active[handle]; ok {
		return fmt.Errorf("%w: handle %d at stamp %d already active as %q", ErrDuplicateJoin, handle, stamp, cur)
	}
	r.active[handle] = name
	r.remember(name)
	return nil
}

// Leave deactivates handle. Unknown handles are ignored.
func (r *Resolver) Leave(_ model.Stamp, handle model.PlayerID) {
	delete(r.active, handle)
}

// Resolve returns the username of an active handle.
func (r *Resolver) Resolve(handle model.PlayerID) (string, bool) {
	name, ok := r.active[handle]
	return name, ok
}

// Active returns the number of active handles.
func (r *Resolver) Active() int {
	return len(r.active)
}

// Identities returns every username ever activated, in first-seen order.
func (r *Resolver) Identities() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Resolver) remember(name string) {
	if _, ok := r.seen[name]; ok {
		return
	}
	r.seen[name] = struct{}{}
	r.order = append(r.order, name)
}

// Log indexes the capture's join and leave records by stamp.
type Log struct {
	joins  map[model.Stamp][]model.Join
	leaves map[model.Stamp][]model.Leave
	all    []model.Join
}

// NewLog builds a log. Records keep their capture order within a stamp.
func NewLog(joins []model.Join, leaves []model.Leave) *Log {
	l := &Log{
		joins:  make(map[model.Stamp][]model.Join),
		leaves: make(map[model.Stamp][]model.Leave),
		all:    make([]model.Join, len(joins)),
	}
	copy(l.all, joins)
	sort.SliceStable(l.all, func(i, k int) bool { return l.all[i].Stamp < l.all[k].Stamp })
	for _, j := range joins {
		l.joins[j.Stamp] = append(l.joins[j.Stamp], j)
	}
	for _, lv := range leaves {
		l.leaves[lv.Stamp] = append(l.leaves[lv.Stamp], lv)
	}
	return l
}

// JoinsAt returns joins recorded exactly at stamp.
func (l *Log) JoinsAt(stamp model.Stamp) []model.Join { return l.joins[stamp] }

// LeavesAt returns leaves recorded exactly at stamp.
func (l *Log) LeavesAt(stamp model.Stamp) []model.Leave { return l.leaves[stamp] }

// JoinsThrough returns joins at or before stamp in stamp order.
func (l *Log) JoinsThrough(stamp model.Stamp) []model.Join {
	n := sort.Search(len(l.all), func(i int) bool { return l.all[i].Stamp > stamp })
	return l.all[:n:n]
}
