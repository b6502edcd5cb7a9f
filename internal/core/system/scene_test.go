package system

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/physics/internal/config"
	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/core/systems/physics/box"
)

const sceneYAML = `
scene:
  entities:
    - id: 1
      hitboxes:
        - name: body
          shape: circle
          radius: 5
          position: [100, 0]
          mass: 2
          collision: hard
          bit: 1
          mask: 3
          flags: [4, 2]
        - name: head
          shape: rectangle
          width: 4
          height: 2
          parent: body
          offset: [10, 0]
          angle: 0.5
          pivot:
            type: absolute
            pos: [-2, 0]
          mass: 1
        - name: tail0
          shape: circle
          radius: 1
          position: [90, 0]
          mass: 0.5
        - name: tail1
          shape: circle
          radius: 1
          position: [85, 0]
          mass: 0.5
    - id: 2
      static: true
      hitboxes:
        - name: post
          shape: rectangle
          width: 10
          height: 10
          position: [0, 0]
          scale: 2
          mass: 1
  tethers:
    - a: {entity: 1, hitbox: body}
      b: {entity: 2, hitbox: post}
      ideal_distance: 50
      spring: 10
      damping: 1
  angular_tethers:
    - owner: {entity: 1, hitbox: head}
      origin: {entity: 1, hitbox: body}
      spring: 5
      padding: 0.1
  chains:
    - hitboxes:
        - {entity: 1, hitbox: body}
        - {entity: 1, hitbox: tail0}
        - {entity: 1, hitbox: tail1}
      ideal_distance: 5
      spring: 20
      anchored: true
      gravity: [0, -9.8]
`

func loadTestScene(t *testing.T) *World {
	t.Helper()
	cfg, err := config.LoadYAML(strings.NewReader(sceneYAML))
	require.NoError(t, err)

	w := newTestWorld()
	require.NoError(t, LoadScene(w, &cfg.Scene))
	return w
}

func TestLoadScene(t *testing.T) {
	w := loadTestScene(t)
	store := w.Store()

	require.Equal(t, 5, store.Len())
	hitboxes := store.Hitboxes(1)
	require.Len(t, hitboxes, 4)
	body, head, tail0, tail1 := hitboxes[0], hitboxes[1], hitboxes[2], hitboxes[3]

	assert.Equal(t, physics.CollisionHard, body.CollisionType)
	assert.Equal(t, uint32(3), body.CollisionMask)
	assert.True(t, body.HasFlag(2))
	assert.True(t, body.HasFlag(4))
	assert.InDelta(t, 100, body.Position().X, 1e-9)

	assert.Equal(t, body.Handle, head.Parent)
	assert.True(t, head.IsPartOfParent)
	assert.Equal(t, box.ShapeRectangular, head.Box.Shape)
	assert.Equal(t, box.PivotAbsolute, head.Box.Pivot.Type)
	assert.Equal(t, physics.CollisionSoft, head.CollisionType)

	post := store.Hitboxes(2)[0]
	assert.True(t, post.IsStatic)
	assert.Equal(t, 2.0, post.Box.Scale)

	assert.Equal(t, 1, w.Tethers().Len())
	assert.Equal(t, 1, w.Tethers().AngularLen())

	require.Len(t, w.Chains(), 1)
	assert.False(t, body.IsKinematic, "anchor stays simulated")
	assert.True(t, tail0.IsKinematic)
	assert.True(t, tail1.IsKinematic)
}

func TestLoadScene_ChildStartsAtAttachedPose(t *testing.T) {
	w := loadTestScene(t)
	body, head := w.Store().Hitboxes(1)[0], w.Store().Hitboxes(1)[1]

	expected := head.Position()
	_, err := w.Store().ResolvePoses(context.Background(), 0)
	require.NoError(t, err)

	assert.InDelta(t, expected.X, head.Position().X, 1e-9)
	assert.InDelta(t, expected.Y, head.Position().Y, 1e-9)
	assert.Greater(t, head.Position().X, body.Position().X)
}

func TestLoadScene_InvalidReference(t *testing.T) {
	scene := &config.SceneConfig{
		Entities: []config.EntityConfig{{
			ID: 1,
			Hitboxes: []config.HitboxConfig{
				{Name: "a", Shape: "circle", Radius: 1, Mass: 1},
			},
		}},
		Tethers: []config.TetherConfig{{
			A: config.Ref{Entity: 1, Hitbox: "a"},
			B: config.Ref{Entity: 1, Hitbox: "missing"},
		}},
	}

	err := LoadScene(newTestWorld(), scene)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}
