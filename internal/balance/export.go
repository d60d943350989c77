package balance

import "sort"

// ExportedParameter is the portable form of one parameter.
type ExportedParameter struct {
	Key      string `json:"key"`
	Value    any    `json:"value"`
	Category string `json:"category"`
}

// Export returns the full parameter set, sorted by category then key.
func (s *Store) Export() []ExportedParameter {
	s.mu.RLock()
	out := make([]ExportedParameter, 0, len(s.defs))
	for k, d := range s.defs {
		out = append(out, ExportedParameter{Key: k, Value: s.values[k], Category: d.Category})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Import applies a parameter set, re-validating every entry. Failures are
// collected per key and do not abort the batch; valid entries still commit.
func (s *Store) Import(params []ExportedParameter, actor string) map[string]error {
	failures := make(map[string]error)
	for _, p := range params {
		if err := s.Set(p.Key, p.Value, actor); err != nil {
			failures[p.Key] = err
		}
	}
	return failures
}
