package physics

import (
	"sort"

	"github.com/zeusync/physics/internal/core/systems/physics/box"
)

// AllPairs yields every pair of hitboxes owned by different entities, in
// Store.Each order.
type AllPairs struct{}

var _ PairSource = AllPairs{}

func (AllPairs) Candidates(store *Store) [][2]*Hitbox {
	var list []*Hitbox
	store.Each(func(hb *Hitbox) { list = append(list, hb) })

	var pairs [][2]*Hitbox
	for i, a := range list {
		for _, b := range list[i+1:] {
			if a.Entity() != b.Entity() {
				pairs = append(pairs, [2]*Hitbox{a, b})
			}
		}
	}
	return pairs
}

// SweepPairs sorts hitboxes by their left bound and only pairs those whose
// world bounds overlap. The result keeps the AllPairs order.
type SweepPairs struct{}

var _ PairSource = SweepPairs{}

type sweepItem struct {
	index  int
	hb     *Hitbox
	bounds box.Bounds
}

func (SweepPairs) Candidates(store *Store) [][2]*Hitbox {
	var items []sweepItem
	store.Each(func(hb *Hitbox) {
		items = append(items, sweepItem{index: len(items), hb: hb, bounds: hb.Box.Bounds()})
	})

	byMinX := make([]sweepItem, len(items))
	copy(byMinX, items)
	sort.SliceStable(byMinX, func(i, j int) bool { return byMinX[i].bounds.MinX < byMinX[j].bounds.MinX })

	var found [][2]int
	active := make([]sweepItem, 0, len(byMinX))
	for _, cur := range byMinX {
		kept := active[:0]
		for _, other := range active {
			if other.bounds.MaxX < cur.bounds.MinX {
				continue
			}
			kept = append(kept, other)
			if other.hb.Entity() == cur.hb.Entity() || !other.bounds.Intersects(cur.bounds) {
				continue
			}
			lo, hi := other.index, cur.index
			if lo > hi {
				lo, hi = hi, lo
			}
			found = append(found, [2]int{lo, hi})
		}
		active = append(kept, cur)
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i][0] != found[j][0] {
			return found[i][0] < found[j][0]
		}
		return found[i][1] < found[j][1]
	})

	pairs := make([][2]*Hitbox, len(found))
	for i, f := range found {
		pairs[i] = [2]*Hitbox{items[f[0]].hb, items[f[1]].hb}
	}
	return pairs
}
