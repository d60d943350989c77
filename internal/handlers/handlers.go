// Package handlers wires player commands to the tactical engines. Each
// handler parses string arguments off the wire, calls into the mine field
// engine, the guard or the balance store, and returns a result struct the
// transport can serialize.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stardrift/tactical/internal/balance"
	"github.com/stardrift/tactical/internal/dispatcher"
	"github.com/stardrift/tactical/internal/guard"
	"github.com/stardrift/tactical/internal/minefield"
	"github.com/stardrift/tactical/internal/scheduler"
	"github.com/stardrift/tactical/internal/storage"
	"github.com/stardrift/tactical/internal/util"
	"github.com/stardrift/tactical/pkg/core"
)

// Dependencies holds all dependencies needed by handlers.
type Dependencies struct {
	Minefield *minefield.Engine
	Guard     *guard.Guard
	Params    *balance.Store
	Mines     storage.MineStore
	Ships     storage.ShipStore
	Scheduler *scheduler.Scheduler
	Logger    *slog.Logger
}

// Service provides the command handlers.
type Service struct {
	deps Dependencies
}

// NewService creates a new handler service.
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// RegisterHandlers registers all player commands with the dispatcher.
// Tactical commands stay synchronous so the caller sees the combat result.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register("mine:lay", s.handleMineLay, dispatcher.Logged())
	d.Register("mine:field", s.handleMineField, dispatcher.Logged())
	d.Register("mine:detect", s.handleMineDetect, dispatcher.Logged())
	d.Register("mine:disarm", s.handleMineDisarm, dispatcher.Logged())

	d.Register("zipper:fire", s.handleZipperFire, dispatcher.Logged())
	d.Register("teleport:emergency", s.handleEmergencyTeleport, dispatcher.Logged())

	d.Register("balance:get", s.handleBalanceGet)
	d.Register("balance:set", s.handleBalanceSet, dispatcher.Logged())
	d.Register("balance:history", s.handleBalanceHistory)
	d.Register("balance:export", s.handleBalanceExport)
	d.Register("balance:import", s.handleBalanceImport, dispatcher.Logged())

	d.Register("status", s.handleStatus)
}

// mine:lay <x> <y> <type> [visible]
func (s *Service) handleMineLay(e dispatcher.Event) (any, error) {
	if err := util.RequireArgs(e.Command, e.Args, 3); err != nil {
		return nil, err
	}
	pos, err := util.ParsePosition(e.Args[0], e.Args[1])
	if err != nil {
		return nil, err
	}
	mineType, err := parseMineType(e.Args[2])
	if err != nil {
		return nil, err
	}

	var opts *minefield.LayOptions
	if len(e.Args) > 3 {
		visible, err := util.ParseBool("visible", e.Args[3])
		if err != nil {
			return nil, err
		}
		opts = &minefield.LayOptions{Visible: &visible}
	}

	mine, err := s.deps.Minefield.LayMine(e.PlayerID, e.ShipID, pos, mineType, opts)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"mineId":  mine.ID,
		"channel": mine.Channel,
		"type":    mine.MineType.String(),
	}, nil
}

// mine:field <x> <y> <size> <count> <type> <pattern>
func (s *Service) handleMineField(e dispatcher.Event) (any, error) {
	if err := util.RequireArgs(e.Command, e.Args, 6); err != nil {
		return nil, err
	}
	center, err := util.ParsePosition(e.Args[0], e.Args[1])
	if err != nil {
		return nil, err
	}
	size, err := util.ParseFloat("size", e.Args[2])
	if err != nil {
		return nil, err
	}
	count, err := util.ParseInt("count", e.Args[3])
	if err != nil {
		return nil, err
	}
	mineType, err := parseMineType(e.Args[4])
	if err != nil {
		return nil, err
	}

	return s.deps.Minefield.LayMineField(
		e.PlayerID, e.ShipID, center, size, count, mineType, core.FieldPattern(e.Args[5]))
}

// mine:detect [range] [type]
func (s *Service) handleMineDetect(e dispatcher.Event) (any, error) {
	scanRange := 0.0
	var err error
	if len(e.Args) > 0 {
		scanRange, err = util.ParseFloat("range", e.Args[0])
		if err != nil {
			return nil, err
		}
	}

	var typeFilter *core.MineType
	if len(e.Args) > 1 {
		mineType, err := parseMineType(e.Args[1])
		if err != nil {
			return nil, err
		}
		typeFilter = &mineType
	}

	return s.deps.Minefield.DetectMines(e.ShipID, scanRange, typeFilter)
}

// mine:disarm <channel>
func (s *Service) handleMineDisarm(e dispatcher.Event) (any, error) {
	if err := util.RequireArgs(e.Command, e.Args, 1); err != nil {
		return nil, err
	}
	channel, err := util.ParseInt("channel", e.Args[0])
	if err != nil {
		return nil, err
	}
	return s.deps.Minefield.DisarmByChannel(channel, e.PlayerID, e.ShipID)
}

// zipper:fire
func (s *Service) handleZipperFire(e dispatcher.Event) (any, error) {
	return s.deps.Guard.FireZipper(e.ShipID)
}

// teleport:emergency [x y]
func (s *Service) handleEmergencyTeleport(e dispatcher.Event) (any, error) {
	var target *core.Position
	if len(e.Args) >= 2 {
		pos, err := util.ParsePosition(e.Args[0], e.Args[1])
		if err != nil {
			return nil, err
		}
		target = &pos
	}
	return s.deps.Guard.EmergencyTeleport(e.ShipID, target)
}

// balance:get [key]
func (s *Service) handleBalanceGet(e dispatcher.Event) (any, error) {
	if len(e.Args) == 0 {
		return s.deps.Params.Export(), nil
	}
	value, err := s.deps.Params.Get(e.Args[0])
	if err != nil {
		return nil, err
	}
	return map[string]any{"key": e.Args[0], "value": value}, nil
}

// balance:set <key> <value>
func (s *Service) handleBalanceSet(e dispatcher.Event) (any, error) {
	if err := util.RequireArgs(e.Command, e.Args, 2); err != nil {
		return nil, err
	}
	key := e.Args[0]

	def, err := s.deps.Params.Definition(key)
	if err != nil {
		return nil, err
	}
	value, err := coerceValue(def, e.Args[1])
	if err != nil {
		return nil, err
	}

	actor := fmt.Sprintf("player:%d", e.PlayerID)
	if err := s.deps.Params.Set(key, value, actor); err != nil {
		return nil, err
	}
	return map[string]any{"key": key, "value": value}, nil
}

// balance:history <key>
func (s *Service) handleBalanceHistory(e dispatcher.Event) (any, error) {
	if err := util.RequireArgs(e.Command, e.Args, 1); err != nil {
		return nil, err
	}
	if _, err := s.deps.Params.Definition(e.Args[0]); err != nil {
		return nil, err
	}
	return s.deps.Params.History(e.Args[0]), nil
}

// balance:export
func (s *Service) handleBalanceExport(e dispatcher.Event) (any, error) {
	return s.deps.Params.Export(), nil
}

// balance:import <json>
func (s *Service) handleBalanceImport(e dispatcher.Event) (any, error) {
	if err := util.RequireArgs(e.Command, e.Args, 1); err != nil {
		return nil, err
	}

	var params []balance.ExportedParameter
	if err := json.Unmarshal([]byte(e.Args[0]), &params); err != nil {
		return nil, fmt.Errorf("parameter payload: %w", core.ErrInvalidArgument)
	}

	actor := fmt.Sprintf("player:%d", e.PlayerID)
	failures := s.deps.Params.Import(params, actor)

	failed := make(map[string]string, len(failures))
	for k, err := range failures {
		failed[k] = err.Error()
	}
	return map[string]any{
		"applied": len(params) - len(failures),
		"failed":  failed,
	}, nil
}

// status
func (s *Service) handleStatus(e dispatcher.Event) (any, error) {
	status := map[string]any{
		"liveMines":    len(s.deps.Mines.LiveMines()),
		"trackedShips": len(s.deps.Ships.Ships()),
	}
	if s.deps.Scheduler != nil {
		stats := s.deps.Scheduler.Snapshot()
		status["jobsRun"] = stats.JobsRun
		status["jobsFailed"] = stats.JobsFailed
		status["jobsRetried"] = stats.JobsRetried
		status["retryQueue"] = stats.RetryQueue
	}
	return status, nil
}

// parseMineType accepts a numeric class or its name.
func parseMineType(s string) (core.MineType, error) {
	if n, err := util.ParseInt("type", s); err == nil {
		t := core.MineType(n)
		if !t.Valid() {
			return 0, fmt.Errorf("mine type %d: %w", n, core.ErrInvalidArgument)
		}
		return t, nil
	}
	t, ok := core.MineTypeByName(s)
	if !ok {
		return 0, fmt.Errorf("mine type %q: %w", s, core.ErrInvalidArgument)
	}
	return t, nil
}

// coerceValue converts a wire string to the parameter's declared kind.
func coerceValue(def balance.Definition, raw string) (any, error) {
	switch def.Kind {
	case balance.KindInt:
		return util.ParseInt(def.Key, raw)
	case balance.KindFloat:
		return util.ParseFloat(def.Key, raw)
	case balance.KindBool:
		return util.ParseBool(def.Key, raw)
	default:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("%s %q: %w", def.Key, raw, core.ErrInvalidArgument)
		}
		return v, nil
	}
}
