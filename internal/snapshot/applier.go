package snapshot

import (
	"go.uber.org/zap"

	"voxelcore/internal/metrics"
	"voxelcore/internal/world"
)

// Target receives decoded snapshots. *world.World satisfies it.
type Target interface {
	Size() world.Size
	ApplyChunk(cx, cy, cz int, blocks []world.BlockType) bool
	ApplyDelta(cx, cy, cz int, edits []world.BlockEdit) int
}

// Applier applies server messages to a Target. Malformed messages are
// logged and dropped.
type Applier struct {
	target  Target
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewApplier(target Target, log *zap.Logger, m *metrics.Metrics) *Applier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Applier{target: target, log: log, metrics: m}
}

// Handle parses and applies one raw message. It reports whether the world changed.
func (a *Applier) Handle(data []byte) bool {
	m, err := ParseMessage(data)
	if err != nil {
		a.drop("parse", err)
		return false
	}
	return a.Apply(m)
}

// Apply applies a parsed message.
func (a *Applier) Apply(m Message) bool {
	switch m.T {
	case TypeChunkData:
		blocks, err := DecodeBase64(m.Data, m.RLE, a.target.Size().Volume())
		if err != nil {
			a.drop("decode", err)
			return false
		}
		return a.target.ApplyChunk(m.CX, m.CY, m.CZ, blocks)
	case TypeChunkDelta:
		return a.target.ApplyDelta(m.CX, m.CY, m.CZ, m.Edits()) > 0
	default:
		a.log.Debug("ignoring message", zap.String("type", m.T))
		return false
	}
}

func (a *Applier) drop(reason string, err error) {
	a.log.Debug("dropping snapshot", zap.String("reason", reason), zap.Error(err))
	a.metrics.IncDropped("snapshot_" + reason)
}

// Inbox hands raw messages from a network goroutine to the simulation
// goroutine. Offer never blocks; Drain runs on the simulation goroutine.
type Inbox struct {
	ch      chan []byte
	metrics *metrics.Metrics
}

func NewInbox(size int, m *metrics.Metrics) *Inbox {
	if size <= 0 {
		size = 64
	}
	return &Inbox{ch: make(chan []byte, size), metrics: m}
}

// Offer queues a message and reports false when the inbox is full.
func (in *Inbox) Offer(data []byte) bool {
	select {
	case in.ch <- data:
		return true
	default:
		in.metrics.IncDropped("inbox_full")
		return false
	}
}

// Drain applies every queued message and returns how many changed the world.
func (in *Inbox) Drain(a *Applier) int {
	changed := 0
	for {
		select {
		case data := <-in.ch:
			if a.Handle(data) {
				changed++
			}
		default:
			return changed
		}
	}
}
