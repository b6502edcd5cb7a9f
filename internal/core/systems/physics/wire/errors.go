package wire

import "github.com/pkg/errors"

var (
	ErrInvalidField       = errors.New("invalid field value")
	ErrBadMagic           = errors.New("not a snapshot frame")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrChecksumMismatch   = errors.New("snapshot checksum mismatch")
	ErrTrailingData       = errors.New("trailing bytes after snapshot payload")
	ErrUnknownFormat      = errors.New("unknown snapshot format")
)
