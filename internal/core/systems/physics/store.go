package physics

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/core/systems/physics/box"
	"github.com/zeusync/physics/pkg/concurrent"
)

var _ HitboxLookup = (*Store)(nil)

// Transform is the per-entity record of hitboxes. IsDirty tells pose
// resolution that something moved the entity since the last pass.
type Transform struct {
	Entity   EntityID
	Hitboxes []Handle
	IsDirty  bool
	IsStatic bool

	nextLocalID int32
}

// Roots returns the entity's hitboxes that have no parent.
func (t *Transform) Roots(store *Store) []Handle {
	var roots []Handle
	for _, h := range t.Hitboxes {
		if hb, ok := store.hitboxes[h]; ok && !hb.HasParent() {
			roots = append(roots, h)
		}
	}
	return roots
}

// Store is the arena owning every hitbox of a world. Hitboxes reference each
// other through handles; the store resolves them.
type Store struct {
	hitboxes   map[Handle]*Hitbox
	transforms map[EntityID]*Transform

	trees      [][]*Hitbox
	orderValid bool
}

func NewStore() *Store {
	return &Store{
		hitboxes:   make(map[Handle]*Hitbox),
		transforms: make(map[EntityID]*Transform),
	}
}

// AddEntity registers an entity with no hitboxes. Adding an existing entity
// returns its record.
func (s *Store) AddEntity(entity EntityID) *Transform {
	if t, ok := s.transforms[entity]; ok {
		return t
	}
	t := &Transform{Entity: entity, IsDirty: true}
	s.transforms[entity] = t
	return t
}

// Add gives hb the next local id of entity and takes ownership of it.
func (s *Store) Add(entity EntityID, hb *Hitbox) Handle {
	t := s.AddEntity(entity)

	h := Handle{Entity: entity, LocalID: t.nextLocalID}
	t.nextLocalID++
	t.Hitboxes = append(t.Hitboxes, h)
	t.IsDirty = true

	hb.Handle = h
	hb.RootEntity = entity
	hb.IsStatic = hb.IsStatic || t.IsStatic
	s.hitboxes[h] = hb
	s.orderValid = false

	return h
}

// Attach links child under parent. Rigid children (isPartOfParent) follow the
// parent pose exactly; detached ones are simulated on their own and only
// inherit flip and angle.
func (s *Store) Attach(child, parent Handle, isPartOfParent bool) error {
	c, ok := s.hitboxes[child]
	if !ok {
		return errors.Wrapf(ErrUnknownHitbox, "child %s", child)
	}
	p, ok := s.hitboxes[parent]
	if !ok {
		return errors.Wrapf(ErrUnknownHitbox, "parent %s", parent)
	}
	if c.HasParent() {
		return errors.Wrapf(ErrAlreadyAttached, "child %s has parent %s", child, c.Parent)
	}
	for cur := p; cur != nil; cur = s.hitboxes[cur.Parent] {
		if cur.Handle == child {
			return errors.Wrapf(ErrHitboxCycle, "%s under %s", child, parent)
		}
	}

	c.Parent = parent
	c.IsPartOfParent = isPartOfParent
	p.Children = append(p.Children, child)
	s.setRootEntity(c, p.RootEntity)
	s.markDirty(child.Entity)
	s.orderValid = false

	return nil
}

// Detach unlinks child from its parent; it becomes a root at its current pose.
func (s *Store) Detach(child Handle) error {
	c, ok := s.hitboxes[child]
	if !ok {
		return errors.Wrapf(ErrUnknownHitbox, "child %s", child)
	}
	if !c.HasParent() {
		return nil
	}

	if p, ok := s.hitboxes[c.Parent]; ok {
		p.Children = removeHandle(p.Children, child)
	}
	c.Parent = NoHandle
	c.IsPartOfParent = false
	// Keep the world angle once the flip is no longer inherited.
	relative := c.Box.Angle
	if c.Box.FlipX {
		relative = -relative
	}
	c.Box.RelativeAngle = relative
	c.PreviousRelativeAngle = relative
	s.setRootEntity(c, child.Entity)
	s.markDirty(child.Entity)
	s.orderValid = false

	return nil
}

func (s *Store) setRootEntity(hb *Hitbox, root EntityID) {
	hb.RootEntity = root
	for _, ch := range hb.Children {
		if c, ok := s.hitboxes[ch]; ok {
			s.setRootEntity(c, root)
		}
	}
}

func (s *Store) Get(h Handle) (*Hitbox, bool) {
	hb, ok := s.hitboxes[h]
	return hb, ok
}

// MustGet panics with ErrUnknownHitbox for a dangling handle.
func (s *Store) MustGet(h Handle) *Hitbox {
	hb, ok := s.hitboxes[h]
	if !ok {
		panic(errors.Wrapf(ErrUnknownHitbox, "handle %s", h))
	}
	return hb
}

// Hitboxes returns the entity's hitboxes in local id order.
func (s *Store) Hitboxes(entity EntityID) []*Hitbox {
	t, ok := s.transforms[entity]
	if !ok {
		return nil
	}
	out := make([]*Hitbox, 0, len(t.Hitboxes))
	for _, h := range t.Hitboxes {
		if hb, ok := s.hitboxes[h]; ok {
			out = append(out, hb)
		}
	}
	return out
}

func (s *Store) Transform(entity EntityID) (*Transform, bool) {
	t, ok := s.transforms[entity]
	return t, ok
}

// Entities returns every registered entity in ascending order.
func (s *Store) Entities() []EntityID {
	out := make([]EntityID, 0, len(s.transforms))
	for e := range s.transforms {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarkDirty flags the entity for pose resolution.
func (s *Store) MarkDirty(entity EntityID) { s.markDirty(entity) }

func (s *Store) markDirty(entity EntityID) {
	if t, ok := s.transforms[entity]; ok {
		t.IsDirty = true
	}
}

// SetStatic freezes or releases every hitbox of the entity.
func (s *Store) SetStatic(entity EntityID, static bool) error {
	t, ok := s.transforms[entity]
	if !ok {
		return errors.Wrapf(ErrEntityNotFound, "entity %d", entity)
	}
	t.IsStatic = static
	for _, h := range t.Hitboxes {
		s.hitboxes[h].IsStatic = static
	}
	return nil
}

// RemoveEntity drops the entity and its hitboxes. Children owned by other
// entities are detached first. Tethers are not touched; tear them down
// through the registry before calling this.
func (s *Store) RemoveEntity(entity EntityID) ([]*Hitbox, error) {
	t, ok := s.transforms[entity]
	if !ok {
		return nil, errors.Wrapf(ErrEntityNotFound, "entity %d", entity)
	}

	removed := make([]*Hitbox, 0, len(t.Hitboxes))
	for _, h := range t.Hitboxes {
		hb := s.hitboxes[h]
		for _, ch := range append([]Handle(nil), hb.Children...) {
			if ch.Entity == entity {
				continue
			}
			if err := s.Detach(ch); err != nil {
				return nil, errors.Wrapf(err, "remove entity %d", entity)
			}
		}
		if hb.HasParent() && hb.Parent.Entity != entity {
			if err := s.Detach(h); err != nil {
				return nil, errors.Wrapf(err, "remove entity %d", entity)
			}
		}
		removed = append(removed, hb)
	}
	for _, hb := range removed {
		delete(s.hitboxes, hb.Handle)
	}
	delete(s.transforms, entity)
	s.orderValid = false

	return removed, nil
}

func (s *Store) Len() int { return len(s.hitboxes) }

// Each visits every hitbox parents-first.
func (s *Store) Each(fn func(hb *Hitbox)) {
	for _, tree := range s.Trees() {
		for _, hb := range tree {
			fn(hb)
		}
	}
}

// Trees returns the hitbox forest: one slice per root, in topological order
// (parents before children). Roots are ordered by handle so the walk is
// deterministic. The result is cached until the hierarchy changes.
func (s *Store) Trees() [][]*Hitbox {
	if s.orderValid {
		return s.trees
	}

	roots := make([]*Hitbox, 0, len(s.transforms))
	for _, hb := range s.hitboxes {
		if !hb.HasParent() {
			roots = append(roots, hb)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Handle.less(roots[j].Handle) })

	s.trees = s.trees[:0]
	for _, root := range roots {
		tree := []*Hitbox{root}
		for i := 0; i < len(tree); i++ {
			for _, ch := range tree[i].Children {
				tree = append(tree, s.hitboxes[ch])
			}
		}
		s.trees = append(s.trees, tree)
	}
	s.orderValid = true

	return s.trees
}

// ResolvePoses recomputes world poses parents-first. A hitbox is recomputed
// when its entity is dirty or its parent was recomputed in the same pass.
// With workers > 1 independent trees resolve concurrently. Returns the
// number of recomputed hitboxes and clears every dirty flag.
func (s *Store) ResolvePoses(ctx context.Context, workers int) (int, error) {
	var resolved atomic.Int64

	batches := concurrent.Chunk(s.Trees(), workers)
	err := concurrent.ForEach(ctx, batches, workers, func(_ context.Context, trees [][]*Hitbox) error {
		var n int64
		for _, tree := range trees {
			for _, hb := range tree {
				if s.resolve(hb) {
					n++
				}
			}
		}
		resolved.Add(n)
		return nil
	})
	if err != nil {
		return int(resolved.Load()), errors.Wrap(err, "resolve poses")
	}

	for _, t := range s.transforms {
		t.IsDirty = false
	}
	return int(resolved.Load()), nil
}

// ResolveRigidChildren re-poses the rigid descendants of hb right away, for
// callers that move a body in the middle of a tick. Detached children and
// their subtrees are left alone.
func (s *Store) ResolveRigidChildren(hb *Hitbox) {
	for _, h := range hb.Children {
		child, ok := s.hitboxes[h]
		if !ok || !child.IsPartOfParent {
			continue
		}
		box.UpdateBox(child.Box, hb.Box)
		s.ResolveRigidChildren(child)
	}
}

func (s *Store) resolve(hb *Hitbox) bool {
	dirty := s.transforms[hb.Handle.Entity].IsDirty

	if !hb.HasParent() {
		hb.resolved = dirty
		if dirty {
			box.UpdateRootBox(hb.Box, 1)
		}
		return hb.resolved
	}

	parent := s.hitboxes[hb.Parent]
	if hb.IsPartOfParent {
		hb.PreviousPosition = hb.Box.Position
	}
	hb.resolved = dirty || parent.resolved
	if !hb.resolved {
		return false
	}

	if hb.IsPartOfParent {
		box.UpdateBox(hb.Box, parent.Box)
	} else {
		box.UpdateDetachedBox(hb.Box, parent.Box)
	}
	return true
}

func removeHandle(list []Handle, h Handle) []Handle {
	for i, cur := range list {
		if cur == h {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
