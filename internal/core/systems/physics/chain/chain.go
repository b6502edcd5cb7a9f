// Package chain solves ordered hitbox chains such as multi-segment tails.
//
// Node i is only ever tethered to node i+1. The solver walks the chain once
// per tick applying the spring-damper law to consecutive pairs, then moves
// every free node with its own velocity (position += velocity*dt). Chain
// nodes are kinematic: the general integrator and the tether registry never
// see them, which keeps the walk O(n) with no registry lookups.
package chain

import (
	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

var (
	ErrTooShort    = errors.New("chain needs at least two hitboxes")
	ErrMissingNode = errors.New("chain node is not in the store")
	// ErrRigidNode rejects a free node that is a rigid child: pose
	// resolution would snap it back to its offset every tick.
	ErrRigidNode = errors.New("free chain node is a rigid child")
)

// Store is the part of the hitbox arena the solver needs.
type Store interface {
	physics.HitboxLookup
	MarkDirty(entity physics.EntityID)
}

// Node is one chain element and its solver-owned velocity.
type Node struct {
	Hitbox   physics.Handle
	Velocity geom.Point
}

// Params tune every link of a chain.
type Params struct {
	IdealDistance  float64
	SpringConstant float64
	Damping        float64
	// Anchored pins the first node to its hitbox: something else moves it
	// (usually a rigid child of a body) and the chain only reads it.
	Anchored bool
	// Gravity is a constant acceleration added to every free node.
	Gravity geom.Point
	// AlignAngles turns each free node to face away from its predecessor.
	AlignAngles bool
}

type TetheredHitboxChain struct {
	Nodes []Node
	Params

	hitboxes []*physics.Hitbox
}

// NewTetheredHitboxChain builds a chain over hitboxes in order. Free nodes
// are flagged kinematic so the integrator leaves their positions alone.
func NewTetheredHitboxChain(hitboxes []*physics.Hitbox, params Params) (*TetheredHitboxChain, error) {
	if len(hitboxes) < 2 {
		return nil, errors.Wrapf(ErrTooShort, "got %d", len(hitboxes))
	}

	c := &TetheredHitboxChain{
		Nodes:    make([]Node, len(hitboxes)),
		Params:   params,
		hitboxes: make([]*physics.Hitbox, len(hitboxes)),
	}
	for i, hb := range hitboxes {
		if !c.isAnchor(i) && hb.HasParent() && hb.IsPartOfParent {
			return nil, errors.Wrapf(ErrRigidNode, "node %d (%s)", i, hb.Handle)
		}
	}
	for i, hb := range hitboxes {
		c.Nodes[i] = Node{Hitbox: hb.Handle}
		if !c.isAnchor(i) {
			hb.IsKinematic = true
		}
	}
	return c, nil
}

func (c *TetheredHitboxChain) isAnchor(i int) bool { return i == 0 && c.Anchored }

// Len is the number of nodes.
func (c *TetheredHitboxChain) Len() int { return len(c.Nodes) }

// Step advances the chain by dt: one ordered spring pass updating node
// velocities, then one position pass. Both passes run in index order, so a
// link sees the velocity its predecessor link already produced this tick.
func (c *TetheredHitboxChain) Step(store Store, dt float64) error {
	if dt <= 0 {
		return nil
	}
	for i, n := range c.Nodes {
		hb, ok := store.Get(n.Hitbox)
		if !ok {
			return errors.Wrapf(ErrMissingNode, "node %d (%s)", i, n.Hitbox)
		}
		c.hitboxes[i] = hb
	}
	if c.Anchored {
		c.Nodes[0].Velocity = c.hitboxes[0].Velocity(dt)
	}

	for i := 0; i < len(c.Nodes)-1; i++ {
		c.link(i, dt)
	}

	for i := range c.Nodes {
		if c.isAnchor(i) {
			continue
		}
		hb := c.hitboxes[i]
		if hb.IsStatic {
			c.Nodes[i].Velocity = geom.Zero
			continue
		}

		c.Nodes[i].Velocity = c.Nodes[i].Velocity.Add(c.Gravity.Scale(dt))
		hb.PreviousPosition = hb.Box.Position
		hb.Box.Position = hb.Box.Position.Add(c.Nodes[i].Velocity.Scale(dt))

		if c.AlignAngles && i > 0 {
			c.align(hb, c.hitboxes[i-1])
		}
		store.MarkDirty(hb.Entity())
	}

	clear(c.hitboxes)
	return nil
}

func (c *TetheredHitboxChain) link(i int, dt float64) {
	a, b := c.hitboxes[i], c.hitboxes[i+1]
	na, nb := &c.Nodes[i], &c.Nodes[i+1]

	diff := b.Box.Position.Sub(a.Box.Position)
	distance := diff.Length()
	if distance == 0 {
		return
	}

	springForce := diff.Scale(c.SpringConstant * (distance - c.IdealDistance) / distance)
	dampingForce := na.Velocity.Sub(nb.Velocity).Scale(-c.Damping)
	force := springForce.Add(dampingForce)

	if !c.isAnchor(i) && !a.IsStatic {
		na.Velocity = na.Velocity.Add(force.Scale(dt / a.Mass))
	}
	if !b.IsStatic {
		nb.Velocity = nb.Velocity.Sub(force.Scale(dt / b.Mass))
	}
}

func (c *TetheredHitboxChain) align(hb, prev *physics.Hitbox) {
	dir := hb.Box.Position.Sub(prev.Box.Position)
	if dir.LengthSquared() == 0 {
		return
	}
	angle := dir.Angle()
	hb.Box.RelativeAngle = angle
	hb.PreviousRelativeAngle = angle
}

// Reset zeroes every node velocity, e.g. after teleporting the owner.
func (c *TetheredHitboxChain) Reset() {
	for i := range c.Nodes {
		c.Nodes[i].Velocity = geom.Zero
	}
}
