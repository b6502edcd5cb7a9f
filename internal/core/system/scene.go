package system

import (
	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/config"
	"github.com/zeusync/physics/internal/core/observability/log"
	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/core/systems/physics/box"
	"github.com/zeusync/physics/internal/core/systems/physics/chain"
	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

var ErrSceneRef = errors.New("scene references an unknown hitbox")

// LoadScene creates the scene's entities, tethers and chains, then admits
// every entity so its tethers become active.
func LoadScene(w *World, scene *config.SceneConfig) error {
	if err := scene.Validate(); err != nil {
		return err
	}

	handles := make(map[config.Ref]physics.Handle)
	for _, e := range scene.Entities {
		if err := spawnEntity(w.store, e, handles); err != nil {
			return errors.Wrapf(err, "entity %d", e.ID)
		}
	}

	lookup := func(r config.Ref) (*physics.Hitbox, error) {
		h, ok := handles[r]
		if !ok {
			return nil, errors.Wrapf(ErrSceneRef, "%d/%s", r.Entity, r.Hitbox)
		}
		return w.store.MustGet(h), nil
	}

	for _, t := range scene.Tethers {
		a, err := lookup(t.A)
		if err != nil {
			return err
		}
		b, err := lookup(t.B)
		if err != nil {
			return err
		}
		physics.NewTether(a, b, t.IdealDistance, t.Spring, t.Damping)
	}

	for _, t := range scene.AngularTethers {
		owner, err := lookup(t.Owner)
		if err != nil {
			return err
		}
		origin, err := lookup(t.Origin)
		if err != nil {
			return err
		}
		physics.NewAngularTether(owner, origin, physics.AngularTetherParams{
			IdealAngle:             t.IdealAngle,
			SpringConstant:         t.Spring,
			Damping:                t.Damping,
			Padding:                t.Padding,
			IdealHitboxAngleOffset: t.AngleOffset,
			UseLeverage:            t.Leverage,
		})
	}

	for i, c := range scene.Chains {
		nodes := make([]*physics.Hitbox, 0, len(c.Hitboxes))
		for _, r := range c.Hitboxes {
			hb, err := lookup(r)
			if err != nil {
				return err
			}
			nodes = append(nodes, hb)
		}
		ch, err := chain.NewTetheredHitboxChain(nodes, chain.Params{
			IdealDistance:  c.IdealDistance,
			SpringConstant: c.Spring,
			Damping:        c.Damping,
			Anchored:       c.Anchored,
			Gravity:        vec(c.Gravity),
			AlignAngles:    c.AlignAngles,
		})
		if err != nil {
			return errors.Wrapf(err, "chain %d", i)
		}
		w.AddChain(ch)
	}

	for _, e := range scene.Entities {
		if _, err := w.AdmitEntity(physics.EntityID(e.ID)); err != nil {
			return err
		}
	}

	w.logger.Info("scene loaded",
		log.Int("entities", len(scene.Entities)),
		log.Int("hitboxes", w.store.Len()),
		log.Int("tethers", w.tethers.Len()),
		log.Int("angular_tethers", w.tethers.AngularLen()),
		log.Int("chains", len(w.chains)),
	)
	return nil
}

func spawnEntity(store *physics.Store, e config.EntityConfig, handles map[config.Ref]physics.Handle) error {
	id := physics.EntityID(e.ID)
	store.AddEntity(id)

	for _, hc := range e.Hitboxes {
		b := newBox(hc)

		var parent *physics.Hitbox
		if hc.Parent != "" {
			parent = store.MustGet(handles[config.Ref{Entity: e.ID, Hitbox: hc.Parent}])
		}

		var parentPose *box.Box
		if parent != nil {
			parentPose = parent.Box
		}

		flags := make([]physics.Flag, len(hc.Flags))
		for i, f := range hc.Flags {
			flags[i] = physics.Flag(f)
		}

		hb := physics.CreateHitbox(parentPose, b, hc.Mass, collisionType(hc.Collision), hc.Bit, hc.Mask, flags...)
		h := store.Add(id, hb)
		handles[config.Ref{Entity: e.ID, Hitbox: hc.Name}] = h

		if parent != nil {
			if err := store.Attach(h, parent.Handle, !hc.Detached); err != nil {
				return err
			}
		}
	}

	if e.Static {
		return store.SetStatic(id, true)
	}
	return nil
}

func newBox(hc config.HitboxConfig) *box.Box {
	var b *box.Box
	offset := geom.Zero
	if hc.Parent != "" {
		offset = vec(hc.Offset)
	}
	if hc.Shape == "circle" {
		b = box.NewCircular(offset, hc.Angle, hc.Radius)
	} else {
		b = box.NewRectangular(offset, hc.Angle, hc.Width, hc.Height)
	}

	if hc.Parent == "" {
		b.Position = vec(hc.Position)
	}
	if hc.Scale > 0 {
		b.SetScale(hc.Scale)
	}
	if hc.Pivot.Type != "" {
		b.Pivot = box.Pivot{Type: pivotType(hc.Pivot.Type), Pos: vec(hc.Pivot.Pos)}
	}
	b.FlipX = hc.FlipX
	return b
}

func collisionType(name string) physics.CollisionType {
	if name == "hard" {
		return physics.CollisionHard
	}
	return physics.CollisionSoft
}

func pivotType(name string) box.PivotType {
	if name == "absolute" {
		return box.PivotAbsolute
	}
	return box.PivotNormalized
}

func vec(v config.Vec) geom.Point { return geom.New(v[0], v[1]) }
