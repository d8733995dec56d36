package snapshot

import (
	"encoding/json"
	"fmt"

	"voxelcore/internal/world"
)

// Message types understood by Applier.
const (
	TypeChunkData  = "CHUNK_DATA"
	TypeChunkDelta = "CHUNK_DELTA"
)

// Message is one server message. Chunk snapshots carry base64 Data, deltas
// carry Changes in chunk-local coordinates.
type Message struct {
	T       string   `json:"t"`
	CX      int      `json:"cx"`
	CY      int      `json:"cy"`
	CZ      int      `json:"cz"`
	Data    string   `json:"data,omitempty"`
	RLE     bool     `json:"rle,omitempty"`
	Changes []Change `json:"changes,omitempty"`
}

// Change is one block edit inside a delta.
type Change struct {
	X  int    `json:"x"`
	Y  int    `json:"y"`
	Z  int    `json:"z"`
	ID uint16 `json:"id"`
}

// ParseMessage decodes a JSON message.
func ParseMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("snapshot: parse message: %w", err)
	}
	return m, nil
}

// Edits converts the changes of a delta to world edits.
func (m Message) Edits() []world.BlockEdit {
	edits := make([]world.BlockEdit, len(m.Changes))
	for i, c := range m.Changes {
		edits[i] = world.BlockEdit{X: c.X, Y: c.Y, Z: c.Z, Block: world.BlockType(c.ID)}
	}
	return edits
}
