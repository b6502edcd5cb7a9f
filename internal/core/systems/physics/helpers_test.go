package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/physics/internal/core/observability/log"
	"github.com/zeusync/physics/internal/core/systems/physics/box"
	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

const tolerance = 1e-9

func newBody(store *Store, entity EntityID, x, y, mass float64) *Hitbox {
	hb := CreateHitbox(nil, box.NewCircular(geom.Zero, 0, 1), mass, CollisionHard, 1, 1)
	hb.Box.Position = geom.New(x, y)
	hb.PreviousPosition = hb.Box.Position
	store.Add(entity, hb)
	return hb
}

func newChild(t *testing.T, store *Store, parent *Hitbox, entity EntityID, offset geom.Point, rigid bool) *Hitbox {
	t.Helper()
	hb := CreateHitbox(parent.Box, box.NewCircular(offset, 0, 1), 1, CollisionSoft, 1, 1)
	store.Add(entity, hb)
	if err := store.Attach(hb.Handle, parent.Handle, rigid); err != nil {
		t.Fatalf("attach: %v", err)
	}
	return hb
}

func newRegistry() *TetherRegistry {
	return NewTetherRegistry(log.Nop())
}

func assertPoint(t *testing.T, expected, actual geom.Point) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, tolerance, "x")
	assert.InDelta(t, expected.Y, actual.Y, tolerance, "y")
}
