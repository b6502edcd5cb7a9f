package physics

import "github.com/pkg/errors"

// Invariant violations. They are raised with panic because continuing would
// corrupt physical state; the system manager recovers and reports them.
var (
	ErrUnknownHitbox       = errors.New("unknown hitbox")
	ErrUnknownTetherEnd    = errors.New("hitbox is not an end of the tether")
	ErrTetherNotRegistered = errors.New("tether is not registered")
	ErrHitboxCycle         = errors.New("hitbox parent link would create a cycle")
)

// Returned errors.
var (
	ErrInvalidMass     = errors.New("hitbox mass must be positive")
	ErrEntityNotFound  = errors.New("entity not found")
	ErrAlreadyAttached = errors.New("hitbox already has a parent")
)
