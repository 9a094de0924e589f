package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"causalnotes/internal/config"
	"causalnotes/internal/container"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Simulation: config.SimulationConfig{
			Seed:        42,
			SampleSize:  500,
			Alpha:       0.05,
			MaxParallel: 2,
		},
		Paths:    config.PathConfig{OutputDir: t.TempDir()},
		LogLevel: "ERROR",
	}
}

func newTestContainer(t *testing.T) *container.Container {
	t.Helper()
	return newTestContainerFrom(t, testConfig(t))
}

func newTestContainerFrom(t *testing.T, cfg *config.Config) *container.Container {
	t.Helper()
	c, err := container.New(cfg)
	require.NoError(t, err)
	return c
}

func execute(t *testing.T, c *container.Container, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(c)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestScenariosCmd(t *testing.T) {
	out, err := execute(t, newTestContainer(t), "scenarios")
	require.NoError(t, err)
	for _, name := range []string{"confounder", "mediator", "collider", "m_bias", "bias_amplification"} {
		assert.Contains(t, out, name)
	}
}

func TestRunCmd_JSONAndLedger(t *testing.T) {
	c := newTestContainer(t)

	out, err := execute(t, c, "run", "confounder", "--format", "json", "--seed", "9")
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, float64(9), body["seed"])

	out, err = execute(t, c, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "confounder")
}

func TestRunCmd_Errors(t *testing.T) {
	c := newTestContainer(t)

	_, err := execute(t, c, "run", "confounder", "--format", "pdf")
	assert.Error(t, err)

	_, err = execute(t, c, "run", "nope")
	assert.Error(t, err)

	_, err = execute(t, c, "run")
	assert.Error(t, err)
}

func TestRunAllCmd_OutDir(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, newTestContainer(t), "run-all", "--format", "markdown", "--out-dir", dir)
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(dir, "*.md"))
	require.NoError(t, err)
	assert.Len(t, files, 5)
}

func TestRunAllCmd_SaveToOutputDir(t *testing.T) {
	c := newTestContainer(t)
	_, err := execute(t, c, "run-all", "--save")
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(c.Config.Paths.OutputDir, "*.txt"))
	require.NoError(t, err)
	assert.Len(t, files, 5)
}

func TestSummaryCmd(t *testing.T) {
	out, err := execute(t, newTestContainer(t), "summary", "confounder", "--n", "300")
	require.NoError(t, err)
	assert.Contains(t, out, "N 300")
	assert.Contains(t, out, "Correlations")
	assert.Contains(t, out, "Bias on T")
}

func TestMDECmd(t *testing.T) {
	out, err := execute(t, newTestContainer(t), "mde", "--effect", "0.2", "--sims", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "0.1772")
	assert.Contains(t, out, "785")
	assert.Contains(t, out, "20 runs")

	_, err = execute(t, newTestContainer(t), "mde", "--alpha", "1.5")
	assert.Error(t, err)
}

func TestMDECmd_ConfigAlpha(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Alpha = 0.1
	c := newTestContainerFrom(t, cfg)

	out, err := execute(t, c, "mde")
	require.NoError(t, err)
	assert.Contains(t, out, "0.1573")

	out, err = execute(t, c, "mde", "--alpha", "0.05")
	require.NoError(t, err)
	assert.Contains(t, out, "0.1772")
}

func TestExportCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collider.csv")
	out, err := execute(t, newTestContainer(t), "export", "collider", path, "--n", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "50 rows")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 51, bytes.Count(data, []byte("\n")))
}

func TestExportCmd_DefaultPath(t *testing.T) {
	c := newTestContainer(t)
	_, err := execute(t, c, "export", "mediator", "--n", "20")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(c.Config.Paths.OutputDir, "mediator.csv"))
	require.NoError(t, err)
	assert.Equal(t, 21, bytes.Count(data, []byte("\n")))
}

func TestEnergyCmd(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "energy.csv")
	doc := "Entity,Code,Year,Primary energy consumption per capita (kWh/person)\n" +
		"Norway,NOR,2000,60000\nNorway,NOR,2001,60100\nNorway,NOR,2002,60200\n" +
		"Chad,TCD,2001,200\nChad,TCD,2002,210\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(doc), 0o644))
	chartPath := filepath.Join(dir, "energy.svg")

	out, err := execute(t, newTestContainer(t), "energy", csvPath, "--chart", chartPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Norway")
	assert.Contains(t, out, "+100.0")
	assert.NotContains(t, out, "Chad")

	svg, err := os.ReadFile(chartPath)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")

	_, err = execute(t, newTestContainer(t), "energy", csvPath, "--country", "Atlantis")
	assert.Error(t, err)
}
