package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmostafa/bomfold/internal/flat"
	"github.com/itsmostafa/bomfold/internal/fold"
	"github.com/itsmostafa/bomfold/internal/materialize"
	"github.com/itsmostafa/bomfold/internal/pipeline"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{12345, "12,345"},
		{1234567, "1,234,567"},
		{1000000000, "1,000,000,000"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.n))
	}
}

func TestFormatSummary(t *testing.T) {
	var buf bytes.Buffer
	FormatSummary(&buf, &pipeline.Result{
		RunID: "run-1",
		Stats: pipeline.Stats{Rows: 1200, BOMs: 3, Entries: 1197},
	}, nil)

	out := buf.String()
	assert.Contains(t, out, "Conversion Complete")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "1,197")
	assert.Contains(t, out, "OK")
	assert.Contains(t, out, "run-1")
}

func TestFormatSummaryError(t *testing.T) {
	var buf bytes.Buffer
	FormatSummary(&buf, nil, errors.New("level key missing"))
	assert.Contains(t, buf.String(), "ERROR")
	assert.Contains(t, buf.String(), "level key missing")
}

func TestFormatRecords(t *testing.T) {
	out := &materialize.Output{
		BOMs: []materialize.Header{{ID: flat.Text("TOP"), Name: flat.Text("Bike")}},
		BOMEntries: []materialize.Entry{
			{BOMID: flat.Text("TOP"), Type: materialize.KindPart, EntryID: flat.Text("P-1"), Quantity: 2},
			{BOMID: flat.Text("TOP"), Type: materialize.KindPart, EntryID: flat.Text("P-2"), Quantity: 0.5},
			{BOMID: flat.Text("TOP"), Type: materialize.KindPart, EntryID: flat.Text("P-3"), Quantity: 1},
		},
	}

	var buf bytes.Buffer
	FormatRecords(&buf, out, 2)

	s := buf.String()
	assert.Contains(t, s, "BOMs (1)")
	assert.Contains(t, s, "BOM Entries (3)")
	assert.Contains(t, s, "Bike")
	assert.Contains(t, s, "0.5")
	assert.NotContains(t, s, "P-3")
	assert.Contains(t, s, "... 1 more")
}

func TestRenderForest(t *testing.T) {
	keys := []string{"level", "id"}
	row := func(level, id string) flat.Row { return flat.Row{flat.Text(level), flat.Text(id)} }

	forest := &fold.Forest{
		AttributeKeys: keys,
		TopLevelNodes: []*fold.Node{
			{
				Attributes: row("1", "TOP"),
				Children: []*fold.Node{
					{Attributes: row("2", "P-1")},
					{Attributes: row("2", "P-1")},
				},
			},
			{Attributes: row("1", "LOOSE")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderForest(&buf, forest, "id", "level"))

	s := buf.String()
	assert.Contains(t, s, "#1 TOP [level=1]")
	assert.Contains(t, s, "#2 P-1 [level=2]")
	assert.Contains(t, s, "#3 P-1 [level=2]")
	assert.Contains(t, s, "#4 LOOSE [level=1]")
	assert.Equal(t, 4, len(strings.Split(strings.TrimSpace(s), "\n")))
}

func TestRenderForestEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderForest(&buf, &fold.Forest{}, "id", "level"))
	assert.Contains(t, buf.String(), "(empty)")
}
