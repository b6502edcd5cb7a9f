package wire

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/core/systems/physics/box"
	"github.com/zeusync/physics/internal/core/systems/physics/geom"
	"github.com/zeusync/physics/pkg/encoding"
)

func TestEncodeBox_CircleLayout(t *testing.T) {
	b := box.NewCircular(geom.New(3, 4), 0.5, 6)
	b.Position = geom.New(1, 2)
	b.Pivot = box.Pivot{Type: box.PivotNormalized, Pos: geom.New(0.25, 0)}
	b.Scale = 2
	b.TotalFlipXMultiplier = -1

	w := encoding.NewWriter(0)
	EncodeBox(w, b)

	r := encoding.NewReader(w.Bytes())
	expected := []float64{1, 1, 2, 0.5, 0.5, 3, 4, float64(box.PivotNormalized), 0.25, 0, 2, 1, 6}
	for i, want := range expected {
		assert.Equal(t, want, r.Float32(), "field %d", i)
	}
	assert.Equal(t, 0, r.Remaining())
}

func TestEncodeBox_RoundTrip(t *testing.T) {
	rect := box.NewRectangular(geom.New(-2, 8), 0.75, 10, 4)
	rect.Position = geom.New(100, -50)
	rect.SetAngle(1.25)
	rect.Pivot = box.Pivot{Type: box.PivotAbsolute, Pos: geom.New(-5, 0)}

	w := encoding.NewWriter(0)
	EncodeBox(w, rect)
	assert.Equal(t, 14*4, w.Len())

	got, err := DecodeBox(encoding.NewReader(w.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, box.ShapeRectangular, got.Shape)
	assert.Equal(t, rect.Pivot, got.Pivot)
	assert.Equal(t, rect.Offset, got.Offset)
	assert.InDelta(t, 1.25, got.Angle, 1e-6)
	assert.InDelta(t, 10, got.Rect.Width, 0)
	assert.InDelta(t, rect.Rect.TopRightVertexOffset().X, got.Rect.TopRightVertexOffset().X, 1e-5)
	assert.InDelta(t, rect.Rect.AxisX().Y, got.Rect.AxisX().Y, 1e-6)
}

func TestDecodeBox_Errors(t *testing.T) {
	w := encoding.NewWriter(0)
	EncodeBox(w, box.NewCircular(geom.Zero, 0, 1))

	_, err := DecodeBox(encoding.NewReader(w.Bytes()[:20]))
	assert.True(t, errors.Is(err, encoding.ErrShortBuffer))

	data := append([]byte(nil), w.Bytes()...)
	copy(data[7*4:], encodeFloat(9))
	_, err = DecodeBox(encoding.NewReader(data))
	assert.True(t, errors.Is(err, ErrInvalidField))
}

func encodeFloat(v float64) []byte {
	w := encoding.NewWriter(4)
	w.Float32(v)
	return w.Bytes()
}

// buildWorld makes a body with a rigid arm, a tail tethered to the arm, and
// a second entity.
func buildWorld(t *testing.T) (*physics.Store, *physics.Hitbox, *physics.Hitbox, *physics.Hitbox) {
	t.Helper()
	store := physics.NewStore()

	body := physics.CreateHitbox(nil, box.NewRectangular(geom.Zero, 0, 20, 10), 5, physics.CollisionHard, 0b01, 0b11, 3, 1)
	body.Box.Position = geom.New(10, 20)
	store.Add(7, body)

	arm := physics.CreateHitbox(body.Box, box.NewCircular(geom.New(12, 0), 0.5, 3), physics.WeightlessMass, physics.CollisionSoft, 0b10, 0b01)
	store.Add(7, arm)
	require.NoError(t, store.Attach(arm.Handle, body.Handle, true))

	tail := physics.CreateHitbox(nil, box.NewCircular(geom.Zero, 0, 2), 1, physics.CollisionSoft, 0b10, 0b01)
	tail.Box.Position = geom.New(40, 20)
	store.Add(9, tail)
	physics.NewTether(arm, tail, 15, 20, 0.5)

	_, err := store.ResolvePoses(context.Background(), 1)
	require.NoError(t, err)
	return store, body, arm, tail
}

func TestEncodeHitbox_RoundTrip(t *testing.T) {
	store, body, arm, tail := buildWorld(t)

	w := encoding.NewWriter(0)
	EncodeHitbox(w, store, arm)
	got, err := DecodeHitbox(encoding.NewReader(w.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, arm.Handle, got.Handle())
	assert.Equal(t, body.Handle, got.Parent)
	assert.Equal(t, physics.EntityID(7), got.RootEntity)
	assert.True(t, got.IsPartOfParent)
	assert.Equal(t, physics.CollisionSoft, got.CollisionType)
	assert.Equal(t, uint32(0b10), got.CollisionBit)
	assert.Equal(t, uint32(0b01), got.CollisionMask)
	assert.InDelta(t, physics.WeightlessMass, got.Mass, 1e-12)
	assert.InDelta(t, 22, got.Box.Position.X, 1e-5)

	require.Len(t, got.Tethers, 1)
	assert.InDelta(t, 15, got.Tethers[0].IdealDistance, 0)
	assert.InDelta(t, 0.5, got.Tethers[0].Damping, 0)
	assert.InDelta(t, tail.Box.Position.X, got.Tethers[0].Other.Position.X, 1e-5)

	w.Reset()
	EncodeHitbox(w, store, body)
	gotBody, err := DecodeHitbox(encoding.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, physics.NoHandle, gotBody.Parent)
	assert.Equal(t, []physics.Handle{arm.Handle}, gotBody.Children)
	assert.Equal(t, physics.FlagSet{1, 3}, gotBody.Flags)
	assert.Empty(t, gotBody.Tethers)
}

func TestEncodeHitbox_FieldOrder(t *testing.T) {
	store, body, _, _ := buildWorld(t)

	w := encoding.NewWriter(0)
	EncodeHitbox(w, store, body)
	r := encoding.NewReader(w.Bytes())

	assert.Equal(t, int32(0), r.Int32(), "localID")
	_, err := DecodeBox(r)
	require.NoError(t, err)
	r.Float32()
	r.Float32()
	r.Float32()
	r.Float32()
	assert.Equal(t, uint32(0), r.Uint32(), "tether count")
	r.Float32()
	r.Float32()
	assert.Equal(t, 5.0, r.Float32(), "mass")
	assert.Equal(t, uint32(physics.CollisionHard), r.Uint32())
	assert.Equal(t, uint32(0b01), r.Uint32())
	assert.Equal(t, uint32(0b11), r.Uint32())
	assert.Equal(t, uint32(2), r.Uint32(), "flag count")
	r.Uint32()
	r.Uint32()
	assert.Equal(t, uint32(7), r.Uint32(), "entity")
	assert.Equal(t, uint32(7), r.Uint32(), "root entity")
	assert.Equal(t, uint32(0), r.Uint32(), "parent entity sentinel")
	assert.Equal(t, int32(-1), r.Int32(), "parent local id sentinel")
	assert.Equal(t, uint32(1), r.Uint32(), "child count")
	r.Uint32()
	r.Int32()
	assert.False(t, r.Bool())
	assert.False(t, r.Bool())
	require.NoError(t, r.Err())
	assert.Equal(t, 0, r.Remaining())
}

func TestSnapshot_RoundTrip(t *testing.T) {
	store, body, arm, tail := buildWorld(t)

	frame, err := EncodeSnapshot(42, store)
	require.NoError(t, err)

	snap, err := DecodeSnapshot(frame)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), snap.Tick)

	handles := make([]physics.Handle, 0, len(snap.Hitboxes))
	for i := range snap.Hitboxes {
		handles = append(handles, snap.Hitboxes[i].Handle())
	}
	assert.Equal(t, []physics.Handle{body.Handle, arm.Handle, tail.Handle}, handles, "parents first")
}

func TestSnapshot_Corruption(t *testing.T) {
	store, _, _, _ := buildWorld(t)
	frame, err := EncodeSnapshot(1, store)
	require.NoError(t, err)

	t.Run("checksum", func(t *testing.T) {
		bad := append([]byte(nil), frame...)
		bad[frameHeaderSize+3] ^= 0xff
		_, err := DecodeSnapshot(bad)
		assert.True(t, errors.Is(err, ErrChecksumMismatch))
	})

	t.Run("short", func(t *testing.T) {
		_, err := DecodeSnapshot(frame[:10])
		assert.True(t, errors.Is(err, encoding.ErrShortBuffer))
	})

	t.Run("magic", func(t *testing.T) {
		_, err := DecodeSnapshot(reframe(frame, func(body []byte) { body[0] = 'X' }))
		assert.True(t, errors.Is(err, ErrBadMagic))
	})

	t.Run("version", func(t *testing.T) {
		_, err := DecodeSnapshot(reframe(frame, func(body []byte) { body[4] = 9 }))
		assert.True(t, errors.Is(err, ErrUnsupportedVersion))
	})
}

// reframe edits the frame body and fixes up the checksum.
func reframe(frame []byte, edit func(body []byte)) []byte {
	body := append([]byte(nil), frame[:len(frame)-checksumSize]...)
	edit(body)
	w := encoding.NewWriter(len(frame))
	w.Raw(body)
	w.Uint64(checksum(body))
	return w.Bytes()
}

func TestCodecs(t *testing.T) {
	store, _, _, _ := buildWorld(t)
	snap := CaptureSnapshot(5, store)

	for _, format := range []string{"binary", "msgpack"} {
		t.Run(format, func(t *testing.T) {
			codec, err := NewCodec(format)
			require.NoError(t, err)
			assert.Equal(t, format, codec.Name())

			data, err := codec.Encode(snap)
			require.NoError(t, err)
			got, err := codec.Decode(data)
			require.NoError(t, err)

			require.Len(t, got.Hitboxes, len(snap.Hitboxes))
			for i := range snap.Hitboxes {
				want, have := snap.Hitboxes[i], got.Hitboxes[i]
				assert.Equal(t, want.Handle(), have.Handle())
				assert.Equal(t, want.Parent, have.Parent)
				assert.Equal(t, want.Children, have.Children)
				assert.Equal(t, want.Flags, have.Flags)
				assert.Len(t, have.Tethers, len(want.Tethers))
				assert.InDelta(t, want.Box.Position.X, have.Box.Position.X, 1e-4)
				assert.InDelta(t, want.Box.Angle, have.Box.Angle, 1e-6)
			}
		})
	}

	_, err := NewCodec("xml")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestMsgpack_KeepsFullPrecision(t *testing.T) {
	store, _, arm, _ := buildWorld(t)
	arm.Box.Position = geom.New(math.Pi, 1.0/3)

	data, err := MarshalMsgpack(CaptureSnapshot(1, store))
	require.NoError(t, err)
	got, err := UnmarshalMsgpack(data)
	require.NoError(t, err)

	assert.Equal(t, geom.New(math.Pi, 1.0/3), got.Hitboxes[1].Box.Position)
}
