package ecs

// Each2 iterates over entities that have both component A and B.
// It walks the smaller pool densely and looks up the larger one by key.
// Both pools are locked for the duration of the walk.
func Each2[A, B any](sa *ComponentPool[A], sb *ComponentPool[B], fn func(EntityID, *A, *B)) {
	pa, pb := sa.pool, sb.pool
	pa.locks++
	pb.locks++
	defer func() {
		pa.locks--
		pb.locks--
	}()

	if pa.Len() <= pb.Len() {
		for slot := range pa.values {
			if !pa.live[slot] {
				continue
			}
			id := pa.keys[slot]
			if j, ok := pb.slots[id]; ok {
				fn(id, &pa.values[slot], &pb.values[j])
			}
		}
		return
	}
	for slot := range pb.values {
		if !pb.live[slot] {
			continue
		}
		id := pb.keys[slot]
		if i, ok := pa.slots[id]; ok {
			fn(id, &pa.values[i], &pb.values[slot])
		}
	}
}

// Each3 iterates over entities that have components A, B, and C.
func Each3[A, B, C any](sa *ComponentPool[A], sb *ComponentPool[B], sc *ComponentPool[C], fn func(EntityID, *A, *B, *C)) {
	pa, pb, pc := sa.pool, sb.pool, sc.pool
	pa.locks++
	pb.locks++
	pc.locks++
	defer func() {
		pa.locks--
		pb.locks--
		pc.locks--
	}()

	// Drive the walk from the smallest pool.
	var (
		keys []EntityID
		live []bool
	)
	switch {
	case pa.Len() <= pb.Len() && pa.Len() <= pc.Len():
		keys, live = pa.keys, pa.live
	case pb.Len() <= pc.Len():
		keys, live = pb.keys, pb.live
	default:
		keys, live = pc.keys, pc.live
	}

	for slot, id := range keys {
		if !live[slot] {
			continue
		}
		i, ok := pa.slots[id]
		if !ok {
			continue
		}
		j, ok := pb.slots[id]
		if !ok {
			continue
		}
		k, ok := pc.slots[id]
		if !ok {
			continue
		}
		fn(id, &pa.values[i], &pb.values[j], &pc.values[k])
	}
}
