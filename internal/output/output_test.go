// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-fetcher/pkg/types"
)

func samplePapers() []types.PaperResult {
	return []types.PaperResult{
		{
			PubmedID:            "38000001",
			Title:               "Base editing of PCSK9, in primates",
			PublicationDate:     "2023 Nov 20",
			NonAcademicAuthors:  []string{"Jane Doe", "Ann Poe"},
			CompanyAffiliations: []string{"Verve Therapeutics"},
			CorrespondingEmail:  "jdoe@vervetx.com",
			Summary:             "Editing \"lowered\" LDL.",
		},
		{
			PubmedID: "38000002",
			Title:    "Academic-only paper",
			Summary:  "Summary not available.",
		},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, samplePapers()))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, []string{
		"38000001", "Base editing of PCSK9, in primates", "2023 Nov 20",
		"Jane Doe, Ann Poe", "Verve Therapeutics", "jdoe@vervetx.com", "Editing \"lowered\" LDL.",
	}, rows[1])
	assert.Equal(t, []string{
		"38000002", "Academic-only paper", "N/A",
		"None", "None", "Not Available", "Summary not available.",
	}, rows[2])
}

func TestWriteCSVHeaderAlwaysPresent(t *testing.T) {
	for _, papers := range [][]types.PaperResult{nil, {}} {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, papers))

		rows := readCSV(t, buf.Bytes())
		require.Len(t, rows, 1)
		assert.Len(t, rows[0], 7)
		assert.Equal(t, Headers, rows[0])
	}
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than needed\n\n\n"), 0o644))

	require.NoError(t, SaveCSV(path, samplePapers()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows := readCSV(t, data)
	require.Len(t, rows, 2, "existing file is truncated")
	assert.Equal(t, "38000001", rows[1][0])
}

func TestSaveCSVBadPath(t *testing.T) {
	err := SaveCSV(filepath.Join(t.TempDir(), "missing", "out.csv"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]types.OutputFormat{
		"":       types.FormatText,
		"text":   types.FormatText,
		" TABLE": types.FormatTable,
		"json":   types.FormatJSON,
		"yaml":   types.FormatYAML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestPrintText(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf, Format: types.FormatText}
	require.NoError(t, p.Print(samplePapers()))

	out := buf.String()
	assert.Contains(t, out, "PubmedID: 38000001\n")
	assert.Contains(t, out, "Non-academic Author(s): Jane Doe, Ann Poe\n")
	assert.Contains(t, out, "Corresponding Author Email: Not Available\n")
	assert.Equal(t, 2*len(Headers)+1, strings.Count(out, "\n"), "one line per field plus a blank separator")
}

func TestPrintTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Printer{Out: &buf}).Print(nil))
	assert.Equal(t, "No papers found.\n", buf.String())
}

func TestPrintTable(t *testing.T) {
	papers := samplePapers()
	papers[0].Summary = strings.Repeat("long summary ", 20)

	var buf bytes.Buffer
	require.NoError(t, (&Printer{Out: &buf, Format: types.FormatTable}).Print(papers))

	out := buf.String()
	assert.Contains(t, out, "38000001")
	assert.Contains(t, out, "38000002")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, papers[0].Summary)
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Printer{Out: &buf, Format: types.FormatJSON}).Print(samplePapers()))

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Jane Doe, Ann Poe", got[0]["Non-academic Author(s)"])
	assert.Equal(t, "None", got[1]["Company Affiliation(s)"])
	assert.Len(t, got[0], len(Headers))
}

func TestPrintJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Printer{Out: &buf, Format: types.FormatJSON}).Print(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Printer{Out: &buf, Format: types.FormatYAML}).Print(samplePapers()))

	var got []map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "jdoe@vervetx.com", got[0]["Corresponding Author Email"])
	assert.Equal(t, "2023 Nov 20", got[0]["Publication Date"])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "日本語日本語日...", truncate("日本語日本語日本語日本語", 10))
}
