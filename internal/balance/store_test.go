package balance

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stardrift/tactical/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultStore_SeedsDefaults(t *testing.T) {
	s := NewDefaultStore()

	assert.Equal(t, 20, s.Int(KeyMaxMines))
	assert.Equal(t, 500, s.Int(KeyMineDamageMax))
	assert.Equal(t, 5000.0, s.Float64(KeyZipperRange))
	assert.Equal(t, 195000.0, s.Float64(KeyUniverseMax))
	assert.Equal(t, 2000.0, s.Float64(KeyBoundaryMargin))
	assert.Equal(t, 50, s.Int(KeyTeleportDamage))
}

func TestSet_ValidWrite(t *testing.T) {
	s := NewDefaultStore()

	require.NoError(t, s.Set(KeyMaxMines, 30, "admin"))
	assert.Equal(t, 30, s.Int(KeyMaxMines))

	hist := s.History(KeyMaxMines)
	require.Len(t, hist, 1)
	assert.Equal(t, 20, hist[0].Old)
	assert.Equal(t, 30, hist[0].New)
	assert.Equal(t, "admin", hist[0].Actor)
}

func TestSet_OutOfRange_LeavesStoreUnchanged(t *testing.T) {
	s := NewDefaultStore()

	err := s.Set(KeyMaxMines, 9999, "admin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidationFailed))
	assert.Equal(t, 20, s.Int(KeyMaxMines), "rejected write must not mutate")
	assert.Empty(t, s.History(KeyMaxMines))
}

func TestSet_WrongType(t *testing.T) {
	s := NewDefaultStore()

	err := s.Set(KeyMaxMines, "twenty", "admin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidationFailed))

	err = s.Set(KeyMaxMines, 20.5, "admin")
	require.Error(t, err, "fractional value is not an int")
}

func TestSet_UnknownKey(t *testing.T) {
	s := NewDefaultStore()

	err := s.Set("warp_core_output", 11, "admin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestSet_CustomPredicate(t *testing.T) {
	defs := []Definition{
		{Key: "even_only", Kind: KindInt, Default: 2, Min: 0, Max: 100,
			Predicate: func(v any) error {
				if v.(int)%2 != 0 {
					return fmt.Errorf("must be even")
				}
				return nil
			}},
	}
	s := NewStore(defs)

	require.NoError(t, s.Set("even_only", 4, "t"))
	err := s.Set("even_only", 5, "t")
	require.Error(t, err)
	assert.Equal(t, 4, s.Int("even_only"))
}

func TestGet_UnknownKey(t *testing.T) {
	s := NewDefaultStore()
	_, err := s.Get("nope")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestHistory_BoundedRetention(t *testing.T) {
	s := NewStore([]Definition{
		{Key: "k", Kind: KindInt, Default: 0, Min: 0, Max: 1 << 30},
	})

	for i := 1; i <= historyRetention+50; i++ {
		require.NoError(t, s.Set("k", i, "t"))
	}

	hist := s.History("k")
	assert.Len(t, hist, historyRetention)
	// Oldest entries evicted: first surviving write is number 51.
	assert.Equal(t, 51, hist[0].New)
	assert.Equal(t, historyRetention+50, hist[len(hist)-1].New)
}

type captureSink struct {
	changes []Change
}

func (c *captureSink) ParameterChanged(ch Change, category string) {
	c.changes = append(c.changes, ch)
}

func TestSink_ReceivesCommittedWritesOnly(t *testing.T) {
	s := NewDefaultStore()
	sink := &captureSink{}
	s.SetSink(sink)

	require.NoError(t, s.Set(KeyTeleportDamage, 75, "admin"))
	_ = s.Set(KeyTeleportDamage, -5, "admin") // rejected

	require.Len(t, sink.changes, 1)
	assert.Equal(t, KeyTeleportDamage, sink.changes[0].Key)
	assert.Equal(t, 75, sink.changes[0].New)
}

func TestExport_SortedAndComplete(t *testing.T) {
	s := NewDefaultStore()

	out := s.Export()
	assert.Len(t, out, len(Defaults()))

	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1], out[i]
		if prev.Category == cur.Category {
			assert.Less(t, prev.Key, cur.Key)
		} else {
			assert.Less(t, prev.Category, cur.Category)
		}
	}
}

func TestImport_CollectsPerKeyErrors(t *testing.T) {
	s := NewDefaultStore()

	failures := s.Import([]ExportedParameter{
		{Key: KeyMaxMines, Value: 40},
		{Key: KeyMaxMines, Value: -1},      // out of range
		{Key: "unknown_key", Value: 1},     // unknown
		{Key: KeyZipperRange, Value: 7500}, // int into float is fine
	}, "importer")

	assert.Len(t, failures, 2)
	assert.Contains(t, failures, KeyMaxMines)
	assert.Contains(t, failures, "unknown_key")

	// Valid entries committed despite failures elsewhere.
	assert.Equal(t, 40, s.Int(KeyMaxMines))
	assert.Equal(t, 7500.0, s.Float64(KeyZipperRange))
}

func TestRoundTrip_ExportImport(t *testing.T) {
	src := NewDefaultStore()
	require.NoError(t, src.Set(KeyMaxMines, 35, "t"))
	require.NoError(t, src.Set(KeyBoundaryMargin, 2500.0, "t"))

	dst := NewDefaultStore()
	failures := dst.Import(src.Export(), "t")
	assert.Empty(t, failures)
	assert.Equal(t, 35, dst.Int(KeyMaxMines))
	assert.Equal(t, 2500.0, dst.Float64(KeyBoundaryMargin))
}
