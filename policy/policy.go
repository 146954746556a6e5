// Package policy holds named solver presets, one per instrument family,
// and loads overrides for them from TOML or YAML files and the
// environment.
package policy

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/meenmo/finkernel/rootfind"
)

// Preset names.
const (
	BondYTM     = "bond_ytm"
	YieldToCall = "yield_to_call"
	ZSpread     = "z_spread"
	IRR         = "irr"
	Forward     = "forward"
	PolicyRate  = "policy_rate"
	Prepayment  = "prepayment"
)

// ErrUnknownPolicy is returned by Set.Config for a name with no preset.
var ErrUnknownPolicy = errors.New("unknown solver policy")

// Set maps a preset name to its solver configuration.
type Set map[string]rootfind.Config

func preset(iters int, eps, lower, upper string) rootfind.Config {
	return rootfind.Config{
		MaxIterations: iters,
		Epsilon:       decimal.RequireFromString(eps),
		LowerBound:    decimal.RequireFromString(lower),
		UpperBound:    decimal.RequireFromString(upper),
	}
}

// Defaults returns a fresh copy of the built-in presets.
//
// Epsilon is in price units of the instrument (per 100 or per 1000 face
// for bonds, currency for IRR). Bounds are the plausible range of the
// solved rate or spread for that family.
func Defaults() Set {
	return Set{
		BondYTM:     preset(100, "1e-10", "-0.99", "5"),
		YieldToCall: preset(100, "1e-10", "-0.99", "5"),
		ZSpread:     preset(100, "1e-10", "-0.5", "1"),
		IRR:         preset(200, "1e-8", "-0.99", "10"),
		Forward:     preset(50, "1e-12", "-0.5", "1"),
		PolicyRate:  preset(50, "1e-6", "-0.1", "0.5"),
		Prepayment:  preset(50, "1e-12", "0", "1"),
	}
}

// Config returns the preset called name.
func (s Set) Config(name string) (rootfind.Config, error) {
	cfg, ok := s[name]
	if !ok {
		return rootfind.Config{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	return cfg, nil
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Names returns the preset names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validate checks every preset.
func (s Set) Validate() error {
	for _, name := range s.Names() {
		if err := s[name].Validate(); err != nil {
			return fmt.Errorf("policy %q: %w", name, err)
		}
	}
	return nil
}

var logger atomic.Pointer[log.Logger]

func init() {
	logger.Store(log.New(io.Discard, "", 0))
}

// SetLogger directs reports of loaded files and applied overrides to l.
// A nil l discards them.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	logger.Store(l)
}

func logf(format string, args ...any) {
	logger.Load().Printf(format, args...)
}
