package tour

// Reconcile merges a saved custom order with a freshly built path. Ids from
// saved that still appear in built keep their saved order; ids new in built
// are appended in built order. Duplicates in saved are dropped.
func Reconcile(saved, built []string) []string {
	present := make(map[string]bool, len(built))
	for _, id := range built {
		present[id] = true
	}

	out := make([]string, 0, len(built))
	used := make(map[string]bool, len(built))
	for _, id := range saved {
		if present[id] && !used[id] {
			out = append(out, id)
			used[id] = true
		}
	}
	for _, id := range built {
		if !used[id] {
			out = append(out, id)
			used[id] = true
		}
	}
	return out
}
