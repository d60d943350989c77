package minefield

import (
	"errors"
	"fmt"
	"math"

	"github.com/stardrift/tactical/pkg/core"
)

// fieldAbortAfter stops a batch lay once this many lays fail in a row,
// e.g. when the owner hits the mine cap mid-batch.
const fieldAbortAfter = 3

// LayMineField lays count mines of one type around center under the given
// placement pattern. The batch is best-effort, not atomic: it lays one mine
// at a time, aborts after three consecutive failures and returns whatever
// was placed.
func (e *Engine) LayMineField(ownerID, shipID uint, center core.Position, fieldSize float64, count int, mineType core.MineType, pattern core.FieldPattern) (core.FieldResult, error) {
	if count <= 0 || fieldSize <= 0 {
		return core.FieldResult{}, fmt.Errorf("field size %v count %d: %w", fieldSize, count, core.ErrInvalidArgument)
	}
	if !pattern.Valid() {
		return core.FieldResult{}, fmt.Errorf("pattern %q: %w", pattern, core.ErrInvalidArgument)
	}
	if !mineType.Valid() {
		return core.FieldResult{}, fmt.Errorf("mine type %d: %w", mineType, core.ErrInvalidArgument)
	}

	positions := e.fieldPositions(center, fieldSize, count, pattern)

	result := core.FieldResult{}
	consecutiveFailures := 0
	for _, pos := range positions {
		mine, err := e.LayMine(ownerID, shipID, pos, mineType, nil)
		if err != nil {
			result.Failed++
			consecutiveFailures++
			if consecutiveFailures >= fieldAbortAfter {
				// Remaining positions count as failed; the cause is almost
				// always the mine cap, which later lays would hit too.
				result.Failed += len(positions) - result.Laid - result.Failed
				e.deps.Logger.Warn("mine field aborted",
					"owner", ownerID, "laid", result.Laid, "failed", result.Failed,
					"reason", errors.Unwrap(err))
				break
			}
			continue
		}
		consecutiveFailures = 0
		result.Laid++
		result.LaidMineIDs = append(result.LaidMineIDs, mine.ID)
	}

	e.deps.Logger.Info("mine field laid",
		"owner", ownerID, "pattern", string(pattern), "laid", result.Laid, "failed", result.Failed)
	return result, nil
}

// fieldPositions generates the placement lattice for a field.
func (e *Engine) fieldPositions(center core.Position, fieldSize float64, count int, pattern core.FieldPattern) []core.Position {
	positions := make([]core.Position, 0, count)

	switch pattern {
	case core.PatternGrid:
		side := int(math.Ceil(math.Sqrt(float64(count))))
		spacing := fieldSize / float64(side)
		// center the lattice on the field center
		offset := float64(side-1) / 2
		for i := 0; i < count; i++ {
			row := i / side
			col := i % side
			positions = append(positions, core.Position{
				X: center.X + (float64(col)-offset)*spacing,
				Y: center.Y + (float64(row)-offset)*spacing,
			})
		}
	case core.PatternCircular:
		radius := fieldSize / 2
		for i := 0; i < count; i++ {
			angle := 2 * math.Pi * float64(i) / float64(count)
			positions = append(positions, core.Position{
				X: center.X + radius*math.Cos(angle),
				Y: center.Y + radius*math.Sin(angle),
			})
		}
	case core.PatternRandom:
		half := fieldSize / 2
		for i := 0; i < count; i++ {
			positions = append(positions, core.Position{
				X: center.X + e.deps.Rand.Uniform(-half, half),
				Y: center.Y + e.deps.Rand.Uniform(-half, half),
			})
		}
	}

	return positions
}
