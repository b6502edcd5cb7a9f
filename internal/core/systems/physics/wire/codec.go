package wire

import (
	"strings"

	"github.com/pkg/errors"
)

// Codec turns snapshots into bytes for a transport.
type Codec interface {
	Name() string
	Encode(s *Snapshot) ([]byte, error)
	Decode(data []byte) (*Snapshot, error)
}

var (
	_ Codec = BinaryCodec{}
	_ Codec = MsgpackCodec{}
)

// NewCodec returns the codec for a config format name: "binary" or "msgpack".
func NewCodec(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "", "binary":
		return BinaryCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
}

// BinaryCodec is the fixed little-endian layout with checksum.
type BinaryCodec struct{}

func (BinaryCodec) Name() string { return "binary" }

func (BinaryCodec) Encode(s *Snapshot) ([]byte, error) { return s.Serialize() }

func (BinaryCodec) Decode(data []byte) (*Snapshot, error) { return DecodeSnapshot(data) }

// MsgpackCodec is the structured msgpack form.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) Encode(s *Snapshot) ([]byte, error) { return MarshalMsgpack(s) }

func (MsgpackCodec) Decode(data []byte) (*Snapshot, error) { return UnmarshalMsgpack(data) }
