// Package util provides argument parsing helpers for the command handlers.
// Command arguments arrive as strings off the wire; these wrap strconv with
// the shared invalid-argument error so handlers report bad input uniformly.
package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stardrift/tactical/pkg/core"
)

// ParseUint parses an entity id argument.
func ParseUint(name, s string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, s, core.ErrInvalidArgument)
	}
	return uint(v), nil
}

// ParseInt parses an integer argument.
func ParseInt(name, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, s, core.ErrInvalidArgument)
	}
	return v, nil
}

// ParseFloat parses a coordinate or range argument.
func ParseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, s, core.ErrInvalidArgument)
	}
	return v, nil
}

// ParseBool parses a flag argument.
func ParseBool(name, s string) (bool, error) {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("%s %q: %w", name, s, core.ErrInvalidArgument)
	}
	return v, nil
}

// ParsePosition parses a coordinate pair from two arguments.
func ParsePosition(xs, ys string) (core.Position, error) {
	x, err := ParseFloat("x", xs)
	if err != nil {
		return core.Position{}, err
	}
	y, err := ParseFloat("y", ys)
	if err != nil {
		return core.Position{}, err
	}
	return core.Position{X: x, Y: y}, nil
}

// RequireArgs checks the argument count for a command.
func RequireArgs(command string, args []string, n int) error {
	if len(args) < n {
		return fmt.Errorf("%s needs %d args, got %d: %w", command, n, len(args), core.ErrInvalidArgument)
	}
	return nil
}
