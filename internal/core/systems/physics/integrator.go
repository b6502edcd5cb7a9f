package physics

import "github.com/zeusync/physics/internal/core/systems/physics/geom"

// Integrate advances every non-static hitbox by one Verlet step and clears
// the accumulated accelerations:
//
//	next = pos + (pos - prev) + acc*dt*dt
//
// Roots and detached children move on their own. A rigid child cannot move
// apart from its parent, so its linear acceleration is handed up the tree,
// scaled by the mass ratio, until it reaches a simulated ancestor. Relative
// angles are integrated for every non-static hitbox.
func Integrate(store *Store, dt float64) int {
	dt2 := dt * dt
	moved := 0

	for _, tree := range store.Trees() {
		for i := len(tree) - 1; i > 0; i-- {
			hb := tree[i]
			if !hb.IsPartOfParent || !hb.HasParent() {
				continue
			}
			parent := store.MustGet(hb.Parent)
			parent.Acceleration = parent.Acceleration.Add(hb.Acceleration.Scale(hb.Mass / parent.Mass))
			hb.Acceleration = geom.Zero
		}

		for _, hb := range tree {
			if hb.IsStatic {
				hb.Acceleration = geom.Zero
				hb.AngularAcceleration = 0
				continue
			}

			rel := hb.Box.RelativeAngle
			hb.Box.RelativeAngle = rel + (rel - hb.PreviousRelativeAngle) + hb.AngularAcceleration*dt2
			hb.PreviousRelativeAngle = rel

			if hb.IsSimulated() {
				pos := hb.Box.Position
				hb.Box.Position = pos.Add(pos.Sub(hb.PreviousPosition)).Add(hb.Acceleration.Scale(dt2))
				hb.PreviousPosition = pos
			}

			hb.Acceleration = geom.Zero
			hb.AngularAcceleration = 0
			store.markDirty(hb.Handle.Entity)
			moved++
		}
	}

	return moved
}
