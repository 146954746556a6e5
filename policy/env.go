package policy

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "FINKERNEL_"

// envEntry is read once with EnvPrefix, applying to every preset, and
// once per preset with EnvPrefix plus the upper-cased preset name:
//
//	FINKERNEL_MAX_ITERATIONS=150
//	FINKERNEL_Z_SPREAD_UPPER_BOUND=0.25
type envEntry struct {
	MaxIterations int    `env:"MAX_ITERATIONS"`
	Epsilon       string `env:"EPSILON"`
	LowerBound    string `env:"LOWER_BOUND"`
	UpperBound    string `env:"UPPER_BOUND"`
}

func (e envEntry) entry() entry {
	return entry(e)
}

func (e envEntry) empty() bool {
	return e == envEntry{}
}

// FromEnv applies overrides from the process environment to a copy of base.
func FromEnv(base Set) (Set, error) {
	return FromEnviron(base, nil)
}

// FromEnviron applies overrides from environ to a copy of base. A nil
// environ reads the process environment. Preset-specific variables win
// over the global ones.
func FromEnviron(base Set, environ map[string]string) (Set, error) {
	var global envEntry
	if err := env.ParseWithOptions(&global, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return nil, fmt.Errorf("policy.FromEnv: %w", err)
	}

	out := base.Clone()
	for _, name := range out.Names() {
		var own envEntry
		prefix := EnvPrefix + strings.ToUpper(name) + "_"
		if err := env.ParseWithOptions(&own, env.Options{Prefix: prefix, Environment: environ}); err != nil {
			return nil, fmt.Errorf("policy.FromEnv %q: %w", name, err)
		}
		if global.empty() && own.empty() {
			continue
		}

		cfg, err := global.entry().apply(out[name])
		if err != nil {
			return nil, fmt.Errorf("policy.FromEnv: %w", err)
		}
		if cfg, err = own.entry().apply(cfg); err != nil {
			return nil, fmt.Errorf("policy.FromEnv %q: %w", name, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("policy.FromEnv %q: %w", name, err)
		}
		out[name] = cfg
		logf("env override %q: max_iterations=%d epsilon=%s bounds=[%s, %s]",
			name, cfg.MaxIterations, cfg.Epsilon, cfg.LowerBound, cfg.UpperBound)
	}
	return out, nil
}
