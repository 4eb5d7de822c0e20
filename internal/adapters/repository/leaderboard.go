package repository

import (
	"hash/fnv"
	"sync"
)

// Career leaderboard kept as a size-augmented treap.
//
// Ordering: kills DESC, then username ASC. "less" means ranks earlier, so an
// in-order traversal yields the leaderboard from best to worst.

type node struct {
	name  string
	kills uint64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aKills uint64, aName string, bKills uint64, bName string) bool {
	if aKills != bKills {
		return aKills > bKills
	}
	return aName < bName
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// priority hashes the username so the tree shape is deterministic.
func priority(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

func insert(n *node, name string, kills uint64) *node {
	if n == nil {
		return &node{name: name, kills: kills, prio: priority(name), size: 1}
	}
	if less(kills, name, n.kills, n.name) {
		n.left = insert(n.left, name, kills)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, name, kills)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func remove(n *node, name string, kills uint64) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.name == name && n.kills == kills:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, name, kills)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, name, kills)
		}
	case less(kills, name, n.kills, n.name):
		n.left = remove(n.left, name, kills)
	default:
		n.right = remove(n.right, name, kills)
	}
	fix(n)
	return n
}

// collect appends up to limit names in rank order.
func collect(n *node, limit int, out *[]string) {
	if n == nil || len(*out) >= limit {
		return
	}
	collect(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.name)
	}
	collect(n.right, limit, out)
}

// countAbove returns how many entries have strictly more kills.
func countAbove(n *node, kills uint64) int {
	count := 0
	for n != nil {
		if n.kills > kills {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// careerBook aggregates per-player totals across matches. It is safe for
// concurrent use.
type careerBook struct {
	mu      sync.RWMutex
	root    *node
	careers map[string]*Career
}

func newCareerBook() *careerBook {
	return &careerBook{careers: make(map[string]*Career)}
}

// apply adds (sign > 0) or removes (sign < 0) one match's lines.
func (b *careerBook) apply(lines map[string]PlayerLine, sign int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for name, line := range lines {
		c, ok := b.careers[name]
		if !ok {
			if sign < 0 {
				continue
			}
			c = &Career{Username: name}
			b.careers[name] = c
		} else {
			b.root = remove(b.root, name, c.Kills)
		}

		if sign > 0 {
			c.Matches++
			c.Kills += line.Kills
			c.Deaths += line.Deaths
		} else {
			c.Matches--
			c.Kills -= min(c.Kills, line.Kills)
			c.Deaths -= min(c.Deaths, line.Deaths)
		}

		if c.Matches <= 0 {
			delete(b.careers, name)
			continue
		}
		b.root = insert(b.root, name, c.Kills)
	}
}

func (b *careerBook) top(n int) []Career {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, min(n, len(b.careers)))
	collect(b.root, n, &names)
	out := make([]Career, 0, len(names))
	for _, name := range names {
		c := *b.careers[name]
		c.Rank = countAbove(b.root, c.Kills) + 1
		out = append(out, c)
	}
	return out
}

func (b *careerBook) get(name string) (Career, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := b.careers[name]
	if !ok {
		return Career{}, false
	}
	out := *c
	out.Rank = countAbove(b.root, c.Kills) + 1
	return out, true
}

func (b *careerBook) players() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.careers)
}
