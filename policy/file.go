package policy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/finkernel/rootfind"
)

// ErrUnsupportedFormat is returned by Load for an extension other than
// .toml, .yaml or .yml.
var ErrUnsupportedFormat = errors.New("unsupported policy file format")

// entry is one preset as written in a policy file. Decimal fields are
// strings so values are read exactly; empty fields keep the base value.
type entry struct {
	MaxIterations int    `toml:"max_iterations" yaml:"max_iterations"`
	Epsilon       string `toml:"epsilon" yaml:"epsilon"`
	LowerBound    string `toml:"lower_bound" yaml:"lower_bound"`
	UpperBound    string `toml:"upper_bound" yaml:"upper_bound"`
}

// document is the top level of a policy file:
//
//	[policy.irr]
//	max_iterations = 300
//	epsilon = "1e-9"
type document struct {
	Policy map[string]entry `toml:"policy" yaml:"policy"`
}

// Load reads a .toml, .yaml or .yml policy file over Defaults.
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("policy.Load: %w", err)
	}
	defer f.Close()

	var set Set
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		set, err = DecodeTOML(f, Defaults())
	case ".yaml", ".yml":
		set, err = DecodeYAML(f, Defaults())
	default:
		return nil, fmt.Errorf("policy.Load: %w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("policy.Load %s: %w", path, err)
	}
	logf("loaded %d presets from %s", len(set), path)
	return set, nil
}

// DecodeTOML applies the presets in r on top of a copy of base.
func DecodeTOML(r io.Reader, base Set) (Set, error) {
	var doc document
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("DecodeTOML: %w", err)
	}
	return merge(base, doc)
}

// DecodeYAML applies the presets in r on top of a copy of base. An empty
// document leaves base unchanged.
func DecodeYAML(r io.Reader, base Set) (Set, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("DecodeYAML: %w", err)
	}
	return merge(base, doc)
}

// merge overlays doc on base. Presets missing from base start from
// rootfind.DefaultConfig.
func merge(base Set, doc document) (Set, error) {
	out := base.Clone()
	for name, e := range doc.Policy {
		cfg, ok := out[name]
		if !ok {
			cfg = rootfind.DefaultConfig
			logf("new preset %q", name)
		}
		cfg, err := e.apply(cfg)
		if err != nil {
			return nil, fmt.Errorf("policy %q: %w", name, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("policy %q: %w", name, err)
		}
		out[name] = cfg
		logf("preset %q: max_iterations=%d epsilon=%s bounds=[%s, %s]",
			name, cfg.MaxIterations, cfg.Epsilon, cfg.LowerBound, cfg.UpperBound)
	}
	return out, nil
}

func (e entry) apply(cfg rootfind.Config) (rootfind.Config, error) {
	if e.MaxIterations != 0 {
		cfg.MaxIterations = e.MaxIterations
	}
	fields := []struct {
		key string
		raw string
		dst *decimal.Decimal
	}{
		{"epsilon", e.Epsilon, &cfg.Epsilon},
		{"lower_bound", e.LowerBound, &cfg.LowerBound},
		{"upper_bound", e.UpperBound, &cfg.UpperBound},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(strings.TrimSpace(f.raw))
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = v
	}
	return cfg, nil
}
