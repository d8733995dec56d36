package main

import (
	"time"

	"go.uber.org/zap"

	"voxelcore/internal/sim"
)

// statsReporter stands in for a renderer and logs a summary periodically.
type statsReporter struct {
	log   *zap.Logger
	every time.Duration
	last  time.Time
}

func newStatsReporter(log *zap.Logger, every time.Duration) *statsReporter {
	return &statsReporter{log: log, every: every}
}

func (r *statsReporter) Render(f sim.Frame) {
	if time.Since(r.last) < r.every {
		return
	}
	r.last = time.Now()

	fields := []zap.Field{
		zap.Uint64("tick", f.Tick),
		zap.Int("meshes", f.Meshes.Len()),
		zap.Int("quads", f.Meshes.Quads()),
		zap.Int("entities", len(f.Entities)),
	}
	if f.Focus != nil {
		p := f.Focus.Body.Pos
		fields = append(fields,
			zap.Float64s("pos", []float64{p.X(), p.Y(), p.Z()}),
			zap.Bool("on_ground", f.Focus.OnGround()),
		)
	}
	r.log.Info("frame", fields...)
}
