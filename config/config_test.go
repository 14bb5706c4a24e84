package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/impfit/circuit"
	"github.com/arloliu/impfit/compress"
	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/results"
)

const runConfig = `solver:
    name: emcee
    walkers: 40
    steps: 500
    burn: 100
    seed: 7
model:
    circuit: ColeCole
    class: ColeCole
    protocol: iterative
parameters: cole_cole_input.yaml
constants_file: constants.yaml
data:
    directory: spectra
    exclude_ending: _skip.csv
    min_frequency: 100
    max_frequency: 1e7
    data_sets: 2
output:
    write: true
    compression: zstd
clustering:
    enabled: true
    constant: 100
logging:
    level: debug
    format: json
`

const coleColeInput = `eh:
    value: 80
    min: 50
    max: 100
    vary: true
el:
    value: 1e4
    min: 0
    max: inf
    vary: true
tau:
    value: 1e-7
    min: 1e-10
    max: 1e-4
a:
    value: 0.9
    min: 0
    max: 1
    vary: false
kdc:
    value: 0.5
    min: -.inf
    max: .inf
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Missing(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvOutput, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().Solver, cfg.Solver)
	require.True(t, cfg.Output.Write)
	require.Equal(t, results.DefaultFile, cfg.OutputPath())
}

func TestLoad_Full(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvOutput, "")

	dir := t.TempDir()
	path := writeFile(t, dir, "impfit.yaml", runConfig)
	writeFile(t, dir, "cole_cole_input.yaml", coleColeInput)
	writeFile(t, dir, "constants.yaml", "c0: 3.1e-13\nRc: 1e-5\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, dir, cfg.BaseDir())

	require.Equal(t, "emcee", cfg.Solver.Name)
	require.Len(t, cfg.Solver.Options(), 4)
	require.True(t, cfg.Model.Iterative())
	require.Equal(t, 1e7, cfg.Data.MaxFrequency)
	require.Equal(t, 2, cfg.Data.DataSets)

	ct, err := cfg.OutputCompression()
	require.NoError(t, err)
	require.Equal(t, compress.CompressionZstd, ct)

	set, err := cfg.Parameters.Set(cfg.BaseDir())
	require.NoError(t, err)
	require.Equal(t, []string{"eh", "el", "tau", "a", "kdc"}, set.Names())
	require.Equal(t, []string{"eh", "el", "tau", "kdc"}, set.Varying())
	el, _ := set.Get("el")
	require.True(t, math.IsInf(el.Max, 1))
	kdc, _ := set.Get("kdc")
	require.True(t, math.IsInf(kdc.Min, -1))

	consts, err := cfg.ResolveConstants()
	require.NoError(t, err)
	require.Equal(t, 3.1e-13, consts.C0)
	require.Equal(t, 1e-5, consts.Rc)
	require.InEpsilon(t, math.Cbrt(0.6)*1e-5, consts.Rn, 1e-12)
	require.Equal(t, circuit.DefaultConstants().Cf, consts.Cf)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvOutput, "/tmp/elsewhere.yaml")

	dir := t.TempDir()
	cfg, err := Load(writeFile(t, dir, "impfit.yaml", runConfig))
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Logging.Level)
	require.Equal(t, "/tmp/elsewhere.yaml", cfg.OutputPath())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvOutput, "")

	cfg := DefaultConfig()
	cfg.Model = ModelConfig{Circuit: "SingleShell", Class: "A", Protocol: ProtocolIterative}
	cfg.Sequential = &SequentialConfig{
		Model2:      ModelConfig{Circuit: "DoubleShell", Class: "B"},
		Communicate: []string{"k", "e"},
	}
	cfg.Parameters = Params{Specs: []ParamSpec{
		{Name: "k", Value: 1.5, Min: 0, Max: math.Inf(1), Vary: true},
		{Name: "e", Value: 80, Min: math.Inf(-1), Max: math.Inf(1), Vary: false},
	}}
	cfg.Parameters2 = Params{File: "double_shell_input.yaml"}

	path := filepath.Join(t.TempDir(), "sub", "impfit.yaml")
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Model, got.Model)
	require.Equal(t, cfg.Sequential, got.Sequential)
	require.Equal(t, cfg.Parameters, got.Parameters)
	require.Equal(t, "double_shell_input.yaml", got.Parameters2.File)
	require.Equal(t, results.DefaultSequentialFile, got.OutputPath())
}

func TestParamFile_RoundTrip(t *testing.T) {
	specs := []ParamSpec{
		{Name: "zeta", Value: 1, Min: 0, Max: 2, Vary: true},
		{Name: "alpha", Value: 0.5, Min: math.Inf(-1), Max: 1, Vary: false},
	}
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, SaveParamFile(path, specs))

	got, err := LoadParamFile(path)
	require.NoError(t, err)
	require.Equal(t, specs, got)
}

func TestLoadParamFile_Minimal(t *testing.T) {
	path := writeFile(t, t.TempDir(), "minimal.yaml", "k:\n  value: 0.5\n  min: 0\n  max: 1\n")

	specs, err := LoadParamFile(path)
	require.NoError(t, err)
	require.Equal(t, []ParamSpec{{Name: "k", Value: 0.5, Min: 0, Max: 1, Vary: true}}, specs)

	set, err := NewParamSet(specs)
	require.NoError(t, err)
	require.Equal(t, []string{"k"}, set.Varying())
}

func TestParams_Inline(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(`parameters:
    R:
        value: 50
        min: 1
        max: .inf
    C:
        value: 1e-6
        vary: false
`), &cfg))

	require.Equal(t, []ParamSpec{
		{Name: "R", Value: 50, Min: 1, Max: math.Inf(1), Vary: true},
		{Name: "C", Value: 1e-6, Min: math.Inf(-1), Max: math.Inf(1), Vary: false},
	}, cfg.Parameters.Specs)

	err := yaml.Unmarshal([]byte("parameters:\n    R: 5\n"), &cfg)
	require.Error(t, err)

	err = yaml.Unmarshal([]byte("parameters:\n    R:\n        value: 5\n        vary: maybe\n"), &cfg)
	require.Error(t, err)
}

func TestParamFile_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"no value":   "k:\n    min: 0\n",
		"bad number": "k:\n    value: abc\n",
		"not a map":  "- 1\n",
		"empty":      "",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadParamFile(writeFile(t, dir, name+".yaml", content))
			require.Error(t, err)
		})
	}

	specs, err := LoadParamFile(writeFile(t, dir, "bounds.yaml", "k:\n    value: 5\n    min: 0\n    max: 1\n"))
	require.NoError(t, err)
	_, err = NewParamSet(specs)
	require.ErrorIs(t, err, errs.ErrInvalidBounds)

	_, err = LoadParamFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestConstants_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConstants(writeFile(t, dir, "bad.yaml", "c0: lots\n"))
	require.ErrorIs(t, err, errs.ErrInvalidConstant)

	_, err = LoadConstants(writeFile(t, dir, "geometry.yaml", "Rc: 1e-9\ndm: 1e-8\n"))
	require.ErrorIs(t, err, errs.ErrInvalidConstant)

	c, err := LoadConstants(writeFile(t, dir, "ok.yaml", "Rn: 5e-6\np: 0.2\n"))
	require.NoError(t, err)
	require.Equal(t, 5e-6, c.Rn)
	require.Equal(t, 0.2, c.P)

	_, err = LoadConstants(writeFile(t, dir, "typo.yaml", "rc: 1e-5\n"))
	require.ErrorIs(t, err, errs.ErrInvalidConstant)

	var nilConstants *Constants
	def, err := nilConstants.Resolve()
	require.NoError(t, err)
	require.Equal(t, circuit.DefaultConstants(), def)
}

func TestConstants_Inline(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvOutput, "")

	dir := t.TempDir()
	path := writeFile(t, dir, "impfit.yaml", "model:\n    circuit: SingleShell\nconstants:\n    Rc: 4e-6\n    ecp: 60\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	consts, err := cfg.ResolveConstants()
	require.NoError(t, err)
	require.Equal(t, 4e-6, consts.Rc)
	require.Equal(t, 60.0, consts.Ecp)
	require.InEpsilon(t, math.Cbrt(0.6)*4e-6, consts.Rn, 1e-12)
	require.Equal(t, circuit.DefaultConstants().Dm, consts.Dm)

	saved := filepath.Join(dir, "saved.yaml")
	require.NoError(t, cfg.Save(saved))
	got, err := Load(saved)
	require.NoError(t, err)
	again, err := got.ResolveConstants()
	require.NoError(t, err)
	require.Equal(t, consts, again)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Model.Circuit = "R + C"
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"solver":      func(c *Config) { c.Solver.Name = "simplex-magic" },
		"burn":        func(c *Config) { c.Solver.Name = "emcee"; c.Solver.Burn = 5000 },
		"circuit":     func(c *Config) { c.Model.Circuit = " " },
		"sequential":  func(c *Config) { c.Sequential = &SequentialConfig{Model2: ModelConfig{Circuit: "R"}} },
		"compression": func(c *Config) { c.Output.Compression = "brotli" },
		"clustering":  func(c *Config) { c.Clustering.Enabled = true },
		"window":      func(c *Config) { c.Data.MinFrequency, c.Data.MaxFrequency = 10, 1 },
		"data sets":   func(c *Config) { c.Data.DataSets = -1 },
		"log level":   func(c *Config) { c.Logging.Level = "chatty" },
		"log format":  func(c *Config) { c.Logging.Format = "xml" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
