package liststore

// Reconcile merges the current collection with an incoming full
// snapshot. The snapshot wins every conflict, matched by local id or
// server id, and duplicate local ids inside the snapshot collapse to
// their first occurrence. Current records absent from the snapshot are
// pending local writes and stay ahead of it. Neither input is mutated.
func Reconcile[T Record](current, incoming []T) []T {
	byLocal := make(map[string]struct{}, len(incoming))
	byServer := make(map[string]struct{}, len(incoming))
	deduped := make([]T, 0, len(incoming))
	for _, rec := range incoming {
		if lid := rec.LocalID(); lid != "" {
			if _, dup := byLocal[lid]; dup {
				continue
			}
			byLocal[lid] = struct{}{}
		}
		if sid := rec.ServerID(); sid != "" {
			byServer[sid] = struct{}{}
		}
		deduped = append(deduped, rec)
	}

	kept := make([]T, 0, len(current))
	for _, rec := range current {
		if lid := rec.LocalID(); lid != "" {
			if _, ok := byLocal[lid]; ok {
				continue
			}
		}
		if sid := rec.ServerID(); sid != "" {
			if _, ok := byServer[sid]; ok {
				continue
			}
		}
		kept = append(kept, rec)
	}

	return append(kept, deduped...)
}
