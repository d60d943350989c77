package balance

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/stardrift/tactical/pkg/core"
)

// historyRetention bounds the change log; oldest entries are evicted beyond it.
const historyRetention = 1000

// Change is one append-only history entry for a parameter write.
type Change struct {
	Timestamp time.Time `json:"timestamp"`
	Key       string    `json:"key"`
	Old       any       `json:"old"`
	New       any       `json:"new"`
	Actor     string    `json:"actor"`
}

// Sink receives committed writes, e.g. for database persistence. Calls happen
// after the store has mutated, outside its lock.
type Sink interface {
	ParameterChanged(c Change, category string)
}

// Store is the balance parameter store. All methods are safe for concurrent
// use. Rejected writes leave the store unchanged.
type Store struct {
	mu      sync.RWMutex
	defs    map[string]Definition
	values  map[string]any
	history []Change
	sink    Sink
}

// NewStore creates a store seeded with the given definitions at their
// default values.
func NewStore(defs []Definition) *Store {
	s := &Store{
		defs:   make(map[string]Definition, len(defs)),
		values: make(map[string]any, len(defs)),
	}
	for _, d := range defs {
		s.defs[d.Key] = d
		s.values[d.Key] = d.Default
	}
	return s
}

// NewDefaultStore creates a store with the built-in parameter set.
func NewDefaultStore() *Store {
	return NewStore(Defaults())
}

// SetSink registers a persistence sink for committed writes.
func (s *Store) SetSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// Get returns the current value for key.
func (s *Store) Get(key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("balance parameter %q: %w", key, core.ErrNotFound)
	}
	return v, nil
}

// Int returns the current value of an int parameter, or zero if the key is
// unknown. Tactical callers use well-known keys, so a zero means a
// programming error that the range validation would have caught on write.
func (s *Store) Int(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := toFloat(s.values[key]); ok {
		return int(f)
	}
	return 0
}

// Float64 returns the current value of a numeric parameter, or zero for
// unknown keys.
func (s *Store) Float64(key string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := toFloat(s.values[key]); ok {
		return f
	}
	return 0
}

// Bool returns the current value of a bool parameter.
func (s *Store) Bool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, _ := s.values[key].(bool)
	return b
}

// Definition returns the definition for key.
func (s *Store) Definition(key string) (Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.defs[key]
	if !ok {
		return Definition{}, fmt.Errorf("balance parameter %q: %w", key, core.ErrNotFound)
	}
	return d, nil
}

// Keys returns all known parameter keys.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.defs))
	for k := range s.defs {
		keys = append(keys, k)
	}
	return keys
}

// Set validates and commits a new value for key, appending a history entry.
// On any validation failure the store is unchanged and an error wrapping
// core.ErrValidationFailed (or core.ErrNotFound for unknown keys) is
// returned.
func (s *Store) Set(key string, value any, actor string) error {
	s.mu.Lock()

	d, ok := s.defs[key]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("balance parameter %q: %w", key, core.ErrNotFound)
	}

	normalized, err := d.validate(value)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("balance parameter %q: %w: %v", key, core.ErrValidationFailed, err)
	}

	change := Change{
		Timestamp: time.Now().UTC(),
		Key:       key,
		Old:       s.values[key],
		New:       normalized,
		Actor:     actor,
	}
	s.values[key] = normalized
	s.history = append(s.history, change)
	if len(s.history) > historyRetention {
		s.history = s.history[len(s.history)-historyRetention:]
	}
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink.ParameterChanged(change, d.Category)
	}
	return nil
}

// History returns the change log for key, oldest first. An empty key returns
// the full log.
func (s *Store) History(key string) []Change {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Change, 0, len(s.history))
	for _, c := range s.history {
		if key == "" || c.Key == key {
			out = append(out, c)
		}
	}
	return out
}

// validate normalizes and checks a candidate value against the definition.
func (d Definition) validate(value any) (any, error) {
	var normalized any

	switch d.Kind {
	case KindInt:
		f, ok := toFloat(value)
		if !ok || f != math.Trunc(f) {
			return nil, fmt.Errorf("expected integer, got %T %v", value, value)
		}
		if f < d.Min || f > d.Max {
			return nil, fmt.Errorf("value %v outside range [%v, %v]", value, d.Min, d.Max)
		}
		normalized = int(f)
	case KindFloat:
		f, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T %v", value, value)
		}
		if f < d.Min || f > d.Max {
			return nil, fmt.Errorf("value %v outside range [%v, %v]", value, d.Min, d.Max)
		}
		normalized = f
	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T %v", value, value)
		}
		normalized = b
	case KindJSON:
		normalized = value
	default:
		return nil, fmt.Errorf("unknown kind %d", d.Kind)
	}

	if d.Predicate != nil {
		if err := d.Predicate(normalized); err != nil {
			return nil, err
		}
	}
	return normalized, nil
}
