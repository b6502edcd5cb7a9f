package wire

import (
	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/pkg/encoding"
	"github.com/zeusync/physics/pkg/generic"
)

const (
	// Magic is "PHYS" read as a little-endian uint32.
	Magic   uint32 = 0x53594850
	Version uint32 = 1

	frameHeaderSize = 4 + 4 + 8 + 4 + 4
	checksumSize    = 8
)

var _ encoding.Serializable[Snapshot] = (*Snapshot)(nil)

var writerPool = generic.NewHotPool(func() *encoding.Writer { return encoding.NewWriter(4096) }, 4).
	WithReset(func(w *encoding.Writer) { w.Reset() })

// Snapshot is the replicated state of every hitbox at one tick, parents
// before children.
type Snapshot struct {
	Tick     uint64
	Hitboxes []HitboxState
}

// CaptureSnapshot copies the store in topological order.
func CaptureSnapshot(tick uint64, store *physics.Store) *Snapshot {
	snap := &Snapshot{
		Tick:     tick,
		Hitboxes: make([]HitboxState, 0, store.Len()),
	}
	store.Each(func(hb *physics.Hitbox) {
		snap.Hitboxes = append(snap.Hitboxes, Capture(store, hb))
	})
	return snap
}

// Serialize builds a frame:
//
//	[magic u32][version u32][tick u64][hitboxCount u32][payloadLen u32]
//	[payload: hitboxes][xxhash64 of everything before u64]
func (s *Snapshot) Serialize() ([]byte, error) {
	payload := writerPool.Get()
	defer writerPool.Put(payload)

	for i := range s.Hitboxes {
		EncodeHitboxState(payload, &s.Hitboxes[i])
	}

	frame := encoding.NewWriter(frameHeaderSize + payload.Len() + checksumSize)
	frame.Uint32(Magic)
	frame.Uint32(Version)
	frame.Uint64(s.Tick)
	frame.Uint32(uint32(len(s.Hitboxes)))
	frame.Uint32(uint32(payload.Len()))
	frame.Raw(payload.Bytes())
	frame.Uint64(checksum(frame.Bytes()))

	return frame.Bytes(), nil
}

// Deserialize parses a frame produced by Serialize, verifying the checksum
// before looking at the payload.
func (s *Snapshot) Deserialize(data []byte) error {
	if len(data) < frameHeaderSize+checksumSize {
		return errors.Wrapf(encoding.ErrShortBuffer, "snapshot frame of %d bytes", len(data))
	}

	body := data[:len(data)-checksumSize]
	sum := encoding.NewReader(data[len(data)-checksumSize:]).Uint64()
	if checksum(body) != sum {
		return ErrChecksumMismatch
	}

	r := encoding.NewReader(body)
	if magic := r.Uint32(); magic != Magic {
		return errors.Wrapf(ErrBadMagic, "magic %#x", magic)
	}
	if version := r.Uint32(); version != Version {
		return errors.Wrapf(ErrUnsupportedVersion, "version %d", version)
	}
	tick := r.Uint64()
	count := r.Count(0)
	payloadLen := int(r.Uint32())
	if payloadLen != r.Remaining() {
		return errors.Wrapf(ErrTrailingData, "payload length %d, frame carries %d", payloadLen, r.Remaining())
	}

	hitboxes := make([]HitboxState, 0, min(count, payloadLen/minBoxSize))
	for i := 0; i < count; i++ {
		hb, err := DecodeHitbox(r)
		if err != nil {
			return errors.Wrapf(err, "snapshot hitbox %d", i)
		}
		hitboxes = append(hitboxes, *hb)
	}
	if r.Remaining() != 0 {
		return errors.Wrapf(ErrTrailingData, "%d bytes", r.Remaining())
	}

	s.Tick = tick
	s.Hitboxes = hitboxes
	return nil
}

// EncodeSnapshot captures and serializes the store in one call.
func EncodeSnapshot(tick uint64, store *physics.Store) ([]byte, error) {
	return CaptureSnapshot(tick, store).Serialize()
}

// DecodeSnapshot parses a binary snapshot frame.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := snap.Deserialize(data); err != nil {
		return nil, err
	}
	return snap, nil
}

func checksum(b []byte) uint64 { return xxhash.Sum64(b) }
