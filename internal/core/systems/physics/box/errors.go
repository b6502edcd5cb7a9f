package box

import "github.com/pkg/errors"

// ErrNotOverlapping is raised when push-out is requested for a rectangle pair
// that does not intersect. Callers must run IsColliding first.
var ErrNotOverlapping = errors.New("push-out requested for non-overlapping boxes")
