package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pyhub-apps/pdfregion/internal/testpdf"
	"github.com/pyhub-apps/pdfregion/pkg/coords"
	"github.com/pyhub-apps/pdfregion/pkg/selection"
)

func writeRoster(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.pdf")
	require.NoError(t, os.WriteFile(path, testpdf.Build(t, testpdf.Roster()), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestParseRect(t *testing.T) {
	got, err := parseRect("60, 80,240,60.5")
	require.NoError(t, err)
	assert.Equal(t, selection.Rect{X: 60, Y: 80, Width: 240, Height: 60.5}, got)

	for _, bad := range []string{"", "1,2,3", "1,2,3,x", "1,2,-3,4"} {
		_, err := parseRect(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseSize(t *testing.T) {
	got, err := parseSize("1224X1584")
	require.NoError(t, err)
	assert.Equal(t, coords.Size{Width: 1224, Height: 1584}, got)

	for _, bad := range []string{"", "1224", "ax2", "2xb"} {
		_, err := parseSize(bad)
		assert.Error(t, err, bad)
	}
}

func TestExtractCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.xlsx")

	stdout, _, err := execute(t, "extract", writeRoster(t), "--rect", "60,80,240,60", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Export successful")

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Extracted Data")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"NAME"}, {"Alice", "Bob"}}, rows)
}

func TestExtractCommandLargePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "large.pdf")
	require.NoError(t, os.WriteFile(path, testpdf.Padded(t, 2<<20, testpdf.Roster()), 0644))
	out := filepath.Join(t.TempDir(), "out.xlsx")

	stdout, _, err := execute(t, "extract", path, "--rect", "60,80,240,60", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Export successful")
}

func TestExtractCommandScaledSurface(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.xlsx")

	_, _, err := execute(t, "extract", writeRoster(t), "--rect", "120,160,480,120", "--surface", "1224x1584", "-o", out)
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Extracted Data")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"NAME"}, {"Alice", "Bob"}}, rows)
}

func TestExtractCommandEmptyArea(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.xlsx")

	_, stderr, err := execute(t, "extract", writeRoster(t), "--rect", "0,0,0,0", "-o", out)
	require.Error(t, err)
	assert.Contains(t, stderr, "No text found")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtractCommandPageOutOfRange(t *testing.T) {
	for _, page := range []string{"0", "9"} {
		t.Run(page, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.xlsx")

			_, _, err := execute(t, "extract", writeRoster(t), "--page", page, "--rect", "60,80,240,60", "-o", out)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "out of range")

			_, statErr := os.Stat(out)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestExtractCommandRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some notes"), 0644))

	_, stderr, err := execute(t, "extract", path, "--rect", "0,0,10,10")
	require.Error(t, err)
	assert.Contains(t, stderr, "Invalid file type")
}

func TestRunsCommand(t *testing.T) {
	stdout, _, err := execute(t, "runs", writeRoster(t), "--json")
	require.NoError(t, err)

	var views []runView
	require.NoError(t, json.Unmarshal([]byte(stdout), &views))

	texts := make([]string, 0, len(views))
	for _, v := range views {
		texts = append(texts, v.Text)
	}
	assert.Equal(t, []string{"NAME", "Alice", "Bob"}, texts)
	assert.InDelta(t, testpdf.Roster()[0].PageY(), views[0].Y, 0.5)
}
