package world

import "go.uber.org/zap"

// UpdateStreaming loads the cube of chunks within the view radius of the
// centre and evicts every other chunk. Repeated calls with the same centre
// and no intervening loads do nothing.
func (w *World) UpdateStreaming(cx, cy, cz int) StreamResult {
	defer w.metrics.Track("world.UpdateStreaming")()
	center := ChunkCoord{X: cx, Y: cy, Z: cz}
	if w.streamed && center == w.streamCenter && w.store.GetModCount() == w.streamMods {
		return StreamResult{}
	}

	r := w.viewRadius
	if !w.streamed || center != w.streamCenter || w.keep == nil {
		side := 2*r + 1
		w.keep = make(map[ChunkKey]struct{}, side*side*side)
		for dz := -r; dz <= r; dz++ {
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					if c := (ChunkCoord{X: cx + dx, Y: cy + dy, Z: cz + dz}); c.Valid() {
						w.keep[c.Key()] = struct{}{}
					}
				}
			}
		}
	}

	var res StreamResult
	for key := range w.keep {
		coord := key.Coord()
		if !w.store.HasChunk(coord) {
			w.ensureChunk(coord)
			res.Loaded++
		}
	}
	evicted := w.store.EvictExcept(w.keep)
	for _, coord := range evicted {
		w.dropLoading(coord)
	}
	res.Evicted = len(evicted)

	w.streamed = true
	w.streamCenter = center
	w.streamMods = w.store.GetModCount()

	if res.Loaded > 0 || res.Evicted > 0 {
		w.metrics.AddEvicted(res.Evicted)
		w.metrics.SetLoaded(w.store.Len())
		w.log.Debug("streaming updated",
			zap.Stringer("center", center),
			zap.Int("loaded", res.Loaded),
			zap.Int("evicted", res.Evicted),
			zap.Int("resident", w.store.Len()),
		)
	}
	return res
}
