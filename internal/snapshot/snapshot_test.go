package snapshot

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/world"
)

func TestDecodeRaw(t *testing.T) {
	got, err := DecodeRaw([]byte{1, 0, 0x34, 0x12})
	require.NoError(t, err)
	assert.Equal(t, []world.BlockType{1, 0x1234}, got)

	_, err = DecodeRaw([]byte{1, 0, 3})
	assert.ErrorIs(t, err, ErrOddLength)
}

func TestDecodeRLE(t *testing.T) {
	// three stone, two air
	got, err := DecodeRLE([]byte{3, 0, 3, 0, 0, 0, 2, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, []world.BlockType{3, 3, 3, 0, 0}, got)

	_, err = DecodeRLE([]byte{3, 0, 3}, 0)
	assert.Error(t, err)

	_, err = DecodeRLE([]byte{3, 0, 0xFF, 0xFF}, 100)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestEncodeRLESplitsLongRuns(t *testing.T) {
	blocks := make([]world.BlockType, 70000)
	blocks[len(blocks)-1] = world.BlockTypeSand
	data := EncodeRLE(blocks)
	assert.Len(t, data, 12)

	got, err := DecodeRLE(data, 0)
	require.NoError(t, err)
	assert.Equal(t, blocks, got)
}

func TestDecodeBase64(t *testing.T) {
	blocks := []world.BlockType{1, 1, 2}
	raw := base64.StdEncoding.EncodeToString(EncodeRaw(blocks))
	rle := base64.StdEncoding.EncodeToString(EncodeRLE(blocks))

	got, err := DecodeBase64(raw, false, 0)
	require.NoError(t, err)
	assert.Equal(t, blocks, got)

	got, err = DecodeBase64(rle, true, 0)
	require.NoError(t, err)
	assert.Equal(t, blocks, got)

	_, err = DecodeBase64("%%%", false, 0)
	assert.Error(t, err)
	_, err = DecodeBase64(raw, false, 2)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func chunkMessage(cx int, blocks []world.BlockType) []byte {
	data := base64.StdEncoding.EncodeToString(EncodeRLE(blocks))
	return []byte(fmt.Sprintf(`{"t":"CHUNK_DATA","cx":%d,"cy":0,"cz":0,"data":%q,"rle":true}`, cx, data))
}

func TestApplierChunkData(t *testing.T) {
	w := world.NewEmpty()
	a := NewApplier(w, nil, nil)

	blocks := make([]world.BlockType, w.Size().Volume())
	blocks[0] = world.BlockTypeLog
	assert.True(t, a.Handle(chunkMessage(2, blocks)))
	assert.Equal(t, world.BlockTypeLog, w.GetBlock(32, 0, 0))

	// wrong length leaves the chunk alone
	assert.False(t, a.Handle(chunkMessage(2, blocks[:10])))
	assert.Equal(t, world.BlockTypeLog, w.GetBlock(32, 0, 0))

	assert.False(t, a.Handle([]byte(`{"t":"CHUNK_DATA"`)))
	assert.False(t, a.Handle([]byte(`{"t":"CHAT","msg":"hi"}`)))
}

func TestApplierDelta(t *testing.T) {
	w := world.NewEmpty()
	a := NewApplier(w, nil, nil)

	msg := []byte(`{"t":"CHUNK_DELTA","cx":-1,"cy":0,"cz":0,"changes":[
		{"x":15,"y":1,"z":2,"id":8},
		{"x":16,"y":0,"z":0,"id":8},
		{"x":-1,"y":0,"z":0,"id":8}]}`)
	assert.True(t, a.Handle(msg))
	assert.Equal(t, world.BlockTypePlanks, w.GetBlock(-1, 1, 2))
	assert.Equal(t, world.BlockTypeAir, w.GetBlock(0, 0, 0))
	assert.Equal(t, world.BlockTypeAir, w.GetBlock(-17, 0, 0))
}

func TestInbox(t *testing.T) {
	w := world.NewEmpty()
	a := NewApplier(w, nil, nil)
	in := NewInbox(1, nil)

	require.True(t, in.Offer([]byte(`{"t":"CHUNK_DELTA","cx":0,"cy":0,"cz":0,"changes":[{"x":1,"y":1,"z":1,"id":4}]}`)))
	assert.False(t, in.Offer([]byte(`{}`)), "full inbox rejects")

	assert.Equal(t, 1, in.Drain(a))
	assert.Equal(t, world.BlockTypeSand, w.GetBlock(1, 1, 1))
	assert.Zero(t, in.Drain(a))
}
