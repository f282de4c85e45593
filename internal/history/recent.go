package history

// Recent returns entries newest first with repeated commands removed; the
// newest occurrence of a command wins. limit <= 0 means no limit. The result
// is never nil.
func Recent(entries []Entry, limit int) []Entry {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, min(len(entries), max(limit, 0)))
	for i := len(entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		e := entries[i]
		if seen[e.Command] {
			continue
		}
		seen[e.Command] = true
		out = append(out, e)
	}
	return out
}
