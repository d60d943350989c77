package minefield

import (
	"fmt"
	"sort"

	"github.com/stardrift/tactical/internal/balance"
	"github.com/stardrift/tactical/internal/geo"
	"github.com/stardrift/tactical/pkg/core"
)

// detection probability model.
const (
	detectBase = 0.8
	detectMinP = 0.10
	detectMaxP = 1.00
)

// DetectMines runs an active scan from the ship's position. Every live,
// passively-scannable mine inside the scan range is reported with
// probability
//
//	clamp(0.10, 1.00, 0.8 × (1 − distance/range) × type × scanner)
//
// so repeated scans over the same field return different subsets. Results
// are sorted by ascending distance. scanRange 0 uses the
// mine_detection_range balance parameter; typeFilter nil scans all classes.
func (e *Engine) DetectMines(shipID uint, scanRange float64, typeFilter *core.MineType) ([]core.DetectedMine, error) {
	ship, ok := e.deps.Ships.GetShip(shipID)
	if !ok {
		return nil, fmt.Errorf("ship %d: %w", shipID, core.ErrNotFound)
	}
	if typeFilter != nil && !typeFilter.Valid() {
		return nil, fmt.Errorf("mine type %d: %w", *typeFilter, core.ErrInvalidArgument)
	}

	if scanRange <= 0 {
		scanRange = e.deps.Params.Float64(balance.KeyMineDetectionRange)
	}

	origin := ship.Position()
	scanner := core.ScannerModifier(ship.ShipClass)

	var found []core.DetectedMine
	for _, mine := range e.deps.Mines.LiveMines() {
		if !mine.IsArmed || !mine.IsVisible {
			continue
		}
		if typeFilter != nil && mine.MineType != *typeFilter {
			continue
		}

		distance := geo.Distance(origin, mine.Position())
		if distance > scanRange {
			continue
		}

		p := detectionProbability(distance, scanRange, mine.MineType, scanner)
		if !e.deps.Rand.Chance(p) {
			continue
		}

		found = append(found, core.DetectedMine{
			MineID:     mine.ID,
			Channel:    mine.Channel,
			Type:       mine.MineType,
			TypeName:   mine.MineType.String(),
			Position:   mine.Position(),
			Distance:   distance,
			Confidence: p,
		})
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Distance < found[j].Distance
	})

	e.deps.Logger.Debug("mine scan complete",
		"shipId", shipID, "range", scanRange, "found", len(found))
	return found, nil
}

// detectionProbability computes the per-scan report probability for one mine.
func detectionProbability(distance, scanRange float64, t core.MineType, scanner float64) float64 {
	p := detectBase * (1 - distance/scanRange) * t.DetectionModifier() * scanner
	if p < detectMinP {
		return detectMinP
	}
	if p > detectMaxP {
		return detectMaxP
	}
	return p
}
