package physics

import (
	"math"

	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

// AngularTether pulls the orientation of its owner toward a fixed angle
// relative to the origin hitbox. It is one-directional: only the owner is
// accelerated.
//
// The spring engages past Padding: the effective error is the signed angular
// error with Padding removed from its magnitude, zero inside the dead zone.
// UseLeverage additionally swings the owner around the origin so that the
// owner sits at IdealAngle as seen from the origin.
type AngularTether struct {
	Owner  Handle
	Origin Handle

	AngularTetherParams
}

// AngularTetherParams are the tuning values of an AngularTether.
type AngularTetherParams struct {
	IdealAngle             float64
	SpringConstant         float64
	Damping                float64
	Padding                float64
	IdealHitboxAngleOffset float64
	UseLeverage            bool
}

// NewAngularTether links an inert angular tether into the owner.
func NewAngularTether(owner, origin *Hitbox, params AngularTetherParams) *AngularTether {
	if !owner.Handle.IsValid() || !origin.Handle.IsValid() {
		panic(errors.Wrapf(ErrUnknownHitbox, "angular tether between %s and %s", owner.Handle, origin.Handle))
	}

	t := &AngularTether{
		Owner:               owner.Handle,
		Origin:              origin.Handle,
		AngularTetherParams: params,
	}
	owner.AngularTethers = append(owner.AngularTethers, t)
	return t
}

// TargetAngle is the world angle the owner is pulled toward.
func (t *AngularTether) TargetAngle(origin *Hitbox) float64 {
	return origin.Box.Angle + t.IdealAngle + t.IdealHitboxAngleOffset
}

func (t *AngularTether) apply(store *Store, dt float64) {
	owner, ok1 := store.Get(t.Owner)
	origin, ok2 := store.Get(t.Origin)
	if !ok1 || !ok2 {
		panic(errors.Wrapf(ErrUnknownHitbox, "active angular tether %s-%s", t.Owner, t.Origin))
	}
	if owner.IsStatic {
		return
	}

	// World angular velocities: a mirrored box turns the other way.
	ownerFlip := owner.Box.TotalFlipXMultiplier
	ownerSpin := owner.AngularVelocity(dt) * ownerFlip
	originSpin := origin.AngularVelocity(dt) * origin.Box.TotalFlipXMultiplier

	angleErr := geom.AngleDifference(owner.Box.Angle, t.TargetAngle(origin))
	torque := deadZone(angleErr, t.Padding)*t.SpringConstant - (ownerSpin-originSpin)*t.Damping
	owner.AngularAcceleration += ownerFlip * torque / owner.Mass

	if t.UseLeverage {
		t.applyLeverage(owner, origin, dt)
	}

	store.markDirty(t.Owner.Entity)
}

func (t *AngularTether) applyLeverage(owner, origin *Hitbox, dt float64) {
	lever := owner.Box.Position.Sub(origin.Box.Position)
	length := lever.Length()
	if length == 0 {
		return
	}

	tangent := lever.Perp().Scale(1 / length)
	dirErr := geom.AngleDifference(lever.Angle(), origin.Box.Angle+t.IdealAngle)
	tangentialVel := owner.Velocity(dt).Sub(origin.Velocity(dt)).Dot(tangent)

	magnitude := deadZone(dirErr, t.Padding)*t.SpringConstant*length - tangentialVel*t.Damping
	owner.Acceleration = owner.Acceleration.Add(tangent.Scale(magnitude / owner.Mass))
}

func deadZone(err, padding float64) float64 {
	if math.Abs(err) <= padding {
		return 0
	}
	if err > 0 {
		return err - padding
	}
	return err + padding
}

func removeAngularTether(list []*AngularTether, t *AngularTether) []*AngularTether {
	for i, cur := range list {
		if cur == t {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
