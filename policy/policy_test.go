package policy_test

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/meenmo/finkernel/discount"
	"github.com/meenmo/finkernel/policy"
	"github.com/meenmo/finkernel/rootfind"
	"github.com/meenmo/finkernel/yield"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	set := policy.Defaults()
	want := []string{
		policy.BondYTM, policy.Forward, policy.IRR, policy.PolicyRate,
		policy.Prepayment, policy.YieldToCall, policy.ZSpread,
	}
	got := set.Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("names: got %v, want %v", got, want)
	}
	if err := set.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	irr, err := set.Config(policy.IRR)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if irr.MaxIterations != 200 || !irr.Epsilon.Equal(d("1e-8")) || !irr.UpperBound.Equal(d("10")) {
		t.Fatalf("irr preset: got %+v", irr)
	}

	if _, err := set.Config("swaption"); !errors.Is(err, policy.ErrUnknownPolicy) {
		t.Fatalf("unknown preset: got %v", err)
	}
}

func TestDefaultsAreIndependent(t *testing.T) {
	t.Parallel()

	a := policy.Defaults()
	b := a.Clone()
	cfg := b[policy.BondYTM]
	cfg.MaxIterations = 7
	b[policy.BondYTM] = cfg

	if a[policy.BondYTM].MaxIterations == 7 || policy.Defaults()[policy.BondYTM].MaxIterations == 7 {
		t.Fatal("Clone shares state with its source")
	}
}

const tomlDoc = `
[policy.irr]
max_iterations = 300
epsilon = "1e-9"

[policy.muni]
upper_bound = "2"
`

const yamlDoc = `
policy:
  irr:
    max_iterations: 300
    epsilon: "1e-9"
  muni:
    upper_bound: "2"
`

func checkOverlay(t *testing.T, set policy.Set) {
	t.Helper()

	irr := set[policy.IRR]
	if irr.MaxIterations != 300 || !irr.Epsilon.Equal(d("1e-9")) {
		t.Fatalf("irr override: got %+v", irr)
	}
	if !irr.LowerBound.Equal(d("-0.99")) || !irr.UpperBound.Equal(d("10")) {
		t.Fatalf("irr bounds should keep defaults, got [%s, %s]", irr.LowerBound, irr.UpperBound)
	}

	muni, err := set.Config("muni")
	if err != nil {
		t.Fatalf("new preset: %v", err)
	}
	want := rootfind.DefaultConfig
	want.UpperBound = d("2")
	if muni.MaxIterations != want.MaxIterations || !muni.Epsilon.Equal(want.Epsilon) ||
		!muni.LowerBound.Equal(want.LowerBound) || !muni.UpperBound.Equal(want.UpperBound) {
		t.Fatalf("muni: got %+v, want %+v", muni, want)
	}

	if set[policy.BondYTM].MaxIterations != 100 {
		t.Fatalf("untouched preset changed: %+v", set[policy.BondYTM])
	}
}

func TestDecodeTOML(t *testing.T) {
	t.Parallel()

	set, err := policy.DecodeTOML(strings.NewReader(tomlDoc), policy.Defaults())
	if err != nil {
		t.Fatalf("DecodeTOML: %v", err)
	}
	checkOverlay(t, set)
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()

	set, err := policy.DecodeYAML(strings.NewReader(yamlDoc), policy.Defaults())
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	checkOverlay(t, set)

	empty, err := policy.DecodeYAML(strings.NewReader(""), policy.Defaults())
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}
	if len(empty) != len(policy.Defaults()) {
		t.Fatalf("empty document changed the set: %v", empty.Names())
	}
}

func TestDecodeRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"inverted bounds", "[policy.forward]\nlower_bound = \"2\"\n", rootfind.ErrInvalidConfig},
		{"negative epsilon", "[policy.irr]\nepsilon = \"-1\"\n", rootfind.ErrInvalidConfig},
		{"not a number", "[policy.irr]\nepsilon = \"tiny\"\n", nil},
		{"syntax", "[policy.irr\n", nil},
	}
	for _, tc := range cases {
		_, err := policy.DecodeTOML(strings.NewReader(tc.doc), policy.Defaults())
		if err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := map[string]string{
		"policy.toml": tomlDoc,
		"policy.yaml": yamlDoc,
		"policy.yml":  yamlDoc,
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		set, err := policy.Load(path)
		if err != nil {
			t.Fatalf("Load %s: %v", name, err)
		}
		checkOverlay(t, set)
	}

	jsonPath := filepath.Join(dir, "policy.json")
	if err := os.WriteFile(jsonPath, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if _, err := policy.Load(jsonPath); !errors.Is(err, policy.ErrUnsupportedFormat) {
		t.Fatalf("json: expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := policy.Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: got %v", err)
	}
}

func TestFromEnviron(t *testing.T) {
	t.Parallel()

	environ := map[string]string{
		"FINKERNEL_MAX_ITERATIONS":       "75",
		"FINKERNEL_Z_SPREAD_UPPER_BOUND": "0.25",
		"FINKERNEL_IRR_MAX_ITERATIONS":   "500",
		"UNRELATED":                      "1",
	}
	set, err := policy.FromEnviron(policy.Defaults(), environ)
	if err != nil {
		t.Fatalf("FromEnviron: %v", err)
	}

	for _, name := range set.Names() {
		cfg := set[name]
		switch name {
		case policy.IRR:
			if cfg.MaxIterations != 500 {
				t.Fatalf("irr: preset variable should win, got %d", cfg.MaxIterations)
			}
		default:
			if cfg.MaxIterations != 75 {
				t.Fatalf("%s: got %d iterations, want 75", name, cfg.MaxIterations)
			}
		}
	}
	if !set[policy.ZSpread].UpperBound.Equal(d("0.25")) {
		t.Fatalf("z_spread upper bound: got %s", set[policy.ZSpread].UpperBound)
	}
	if !set[policy.BondYTM].UpperBound.Equal(d("5")) {
		t.Fatalf("bond_ytm upper bound changed: %s", set[policy.BondYTM].UpperBound)
	}

	unchanged, err := policy.FromEnviron(policy.Defaults(), map[string]string{})
	if err != nil {
		t.Fatalf("empty environ: %v", err)
	}
	if unchanged[policy.Forward].MaxIterations != 50 {
		t.Fatalf("empty environ changed forward: %+v", unchanged[policy.Forward])
	}
}

func TestFromEnvironRejectsBadValues(t *testing.T) {
	t.Parallel()

	bad := []map[string]string{
		{"FINKERNEL_MAX_ITERATIONS": "many"},
		{"FINKERNEL_EPSILON": "abc"},
		{"FINKERNEL_PREPAYMENT_LOWER_BOUND": "3"},
	}
	for i, environ := range bad {
		if _, err := policy.FromEnviron(policy.Defaults(), environ); err == nil {
			t.Fatalf("case %d: expected an error for %v", i, environ)
		}
	}
}

func TestPresetDrivesSolver(t *testing.T) {
	t.Parallel()

	set, err := policy.FromEnviron(policy.Defaults(), map[string]string{"FINKERNEL_BOND_YTM_MAX_ITERATIONS": "1"})
	if err != nil {
		t.Fatalf("FromEnviron: %v", err)
	}
	cfg, err := set.Config(policy.BondYTM)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}

	zero := discount.MustSchedule(1, []discount.Cashflow{{Period: 10, Amount: d("1000")}})
	if _, err := yield.SolveYield(zero, d("500"), cfg); !errors.Is(err, rootfind.ErrNotConverged) {
		t.Fatalf("one-step budget: expected ErrNotConverged, got %v", err)
	}

	full, _ := policy.Defaults().Config(policy.BondYTM)
	if _, err := yield.SolveYield(zero, d("500"), full); err != nil {
		t.Fatalf("default budget: %v", err)
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	policy.SetLogger(log.New(&buf, "", 0))
	defer policy.SetLogger(nil)

	if _, err := policy.DecodeTOML(strings.NewReader(tomlDoc), policy.Defaults()); err != nil {
		t.Fatalf("DecodeTOML: %v", err)
	}
	if !strings.Contains(buf.String(), `preset "irr": max_iterations=300`) {
		t.Fatalf("log output: %q", buf.String())
	}
}
