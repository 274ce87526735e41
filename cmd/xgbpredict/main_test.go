package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/xgbpredictor/xgboost/xgbtest"
)

// The fixture scores 0.5 + 1 when f0 < 0.5 and 0.5 + 2 otherwise, with
// missing values going right.
func writeStumpModel(t *testing.T, dir string) string {
	t.Helper()
	m := xgbtest.Model{
		BaseScore:  0.5,
		NumFeature: 1,
		Objective:  "reg:linear",
		Booster:    "gbtree",
		Trees:      []xgbtest.Tree{xgbtest.Stump(0, 0.5, 1, 2, false)},
	}
	path := filepath.Join(dir, "model.bin")
	require.NoError(t, os.WriteFile(path, m.Bytes(), 0o600))
	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cliParser(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "xgbpredict v0.3.0\n", out)
}

func TestPredictCSV(t *testing.T) {
	dir := t.TempDir()
	model := writeStumpModel(t, dir)
	input := writeFile(t, dir, "rows.csv", "f0\n0\n1\n\n")

	out, err := execute(t, "predict", "-m", model, "-i", input)
	require.NoError(t, err)
	assert.Equal(t, "1.5\n2.5\n", out)
}

func TestPredictZeroAsMissing(t *testing.T) {
	dir := t.TempDir()
	model := writeStumpModel(t, dir)
	input := writeFile(t, dir, "rows.csv", "0\n?\n")

	out, err := execute(t, "predict", "-m", model, "-i", input, "--zero-as-missing")
	require.NoError(t, err)
	assert.Equal(t, "2.5\n2.5\n", out)
}

func TestPredictLibSVM(t *testing.T) {
	dir := t.TempDir()
	model := writeStumpModel(t, dir)
	input := writeFile(t, dir, "rows.txt", "1 0:0.1\n0 0:0.9\n1\n")

	out, err := execute(t, "predict", "-m", model, "-i", input, "--output-format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "1.5\n2.5\n2.5\n", out)
}

func TestPredictNPYOutput(t *testing.T) {
	dir := t.TempDir()
	model := writeStumpModel(t, dir)
	input := writeFile(t, dir, "rows.csv", "0\n1\n")
	output := filepath.Join(dir, "preds.npy")

	_, err := execute(t, "predict", "-m", model, "-i", input, "-o", output)
	require.NoError(t, err)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	m, err := readNPY(f)
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 1, c)
	assert.Equal(t, 1.5, m.At(0, 0))
	assert.Equal(t, 2.5, m.At(1, 0))
}

func TestPredictPlot(t *testing.T) {
	dir := t.TempDir()
	model := writeStumpModel(t, dir)
	input := writeFile(t, dir, "rows.csv", "0\n1\n1\n")
	plotFile := filepath.Join(dir, "hist.png")

	_, err := execute(t, "predict", "-m", model, "-i", input, "--plot", plotFile)
	require.NoError(t, err)
	info, err := os.Stat(plotFile)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPredictConfigFile(t *testing.T) {
	dir := t.TempDir()
	model := writeStumpModel(t, dir)
	input := writeFile(t, dir, "rows.csv", "0\n")
	config := writeFile(t, dir, "config.yml",
		"model: "+model+"\ninput: "+input+"\nworkers: 2\nlog_level: error\n")

	out, err := execute(t, "predict", "-c", config)
	require.NoError(t, err)
	assert.Equal(t, "1.5\n", out)

	other := writeFile(t, dir, "other.csv", "1\n")
	out, err = execute(t, "predict", "-c", config, "-i", other)
	require.NoError(t, err)
	assert.Equal(t, "2.5\n", out, "flags override the config file")
}

func TestPredictValidation(t *testing.T) {
	dir := t.TempDir()
	model := writeStumpModel(t, dir)

	_, err := execute(t, "predict", "-m", model)
	assert.Error(t, err)

	_, err = execute(t, "predict", "-m", model, "-i", "rows.csv", "-n", "-1")
	assert.Error(t, err)

	input := writeFile(t, dir, "empty.csv", "")
	_, err = execute(t, "predict", "-m", model, "-i", input)
	assert.Error(t, err)

	_, err = execute(t, "predict", "-m", filepath.Join(dir, "absent.bin"), "-i", input)
	assert.Error(t, err)

	_, err = execute(t, "--log-format", "xml", "version")
	assert.Error(t, err)
}

func TestLeafCommand(t *testing.T) {
	dir := t.TempDir()
	model := writeStumpModel(t, dir)
	input := writeFile(t, dir, "rows.txt", "0 0:0\n0 0:1\n0\n")

	out, err := execute(t, "leaf", "-m", model, "-i", input)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n2\n", out)
}

func TestDumpCommand(t *testing.T) {
	dir := t.TempDir()
	model := writeStumpModel(t, dir)

	out, err := execute(t, "dump", "-m", model)
	require.NoError(t, err)
	assert.Equal(t, "booster[0]:\n0:[f0<0.5] yes=1,no=2,missing=2\n\t1:leaf=1\n\t2:leaf=2\n", out)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	model := writeStumpModel(t, dir)

	out, err := execute(t, "render", "-m", model)
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "f0<0.5")

	_, err = execute(t, "render", "-m", model, "-t", "3")
	assert.Error(t, err)

	_, err = execute(t, "render", "-m", model, "-f", "bmp")
	assert.Error(t, err)
}

func TestInfoCommand(t *testing.T) {
	dir := t.TempDir()
	model := writeStumpModel(t, dir)

	out, err := execute(t, "info", "-m", model)
	require.NoError(t, err)
	assert.Contains(t, out, "reg:linear")
	assert.Contains(t, out, "gbtree")
	assert.Contains(t, out, "num_trees:")
}

func TestEvalCommand(t *testing.T) {
	dir := t.TempDir()
	model := writeStumpModel(t, dir)

	libsvm := writeFile(t, dir, "rows.txt", "1.5 0:0\n2 0:1\n")
	out, err := execute(t, "eval", "-m", model, "-i", libsvm)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "rmse\t0.353553390593273"), out)

	csvIn := writeFile(t, dir, "rows.csv", "0,1.5\n1,2.5\n")
	out, err = execute(t, "eval", "-m", model, "-i", csvIn, "--label-column", "1", "--metric", "mae")
	require.NoError(t, err)
	assert.Equal(t, "mae\t0\n", out)

	unlabelled := writeFile(t, dir, "bare.txt", "0:1\n")
	_, err = execute(t, "eval", "-m", model, "-i", unlabelled)
	assert.Error(t, err)
}

func TestInfoHelpListsObjectives(t *testing.T) {
	out, err := execute(t, "info", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "binary:logistic, binary:logitraw")
	assert.Contains(t, out, "multi:softprob")
}
