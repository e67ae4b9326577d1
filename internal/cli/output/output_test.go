package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type forkRow struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	TxCount   int       `json:"transaction_count"`
	Internal  string    `json:"internal" table:"-"`
	Detail    string    `json:"detail" table:"wide"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON, false))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML, false))

	tf, ok := NewFormatter(FormatTable, true).(*TableFormatter)
	require.True(t, ok)
	assert.True(t, tf.Wide)

	assert.IsType(t, &TableFormatter{}, NewFormatter("unknown", false))
}

func TestTableFormatter_Slice(t *testing.T) {
	rows := []forkRow{
		{ID: "01abc", TxCount: 3, Internal: "secret", Detail: "more"},
		{ID: "01def"},
	}

	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"ID", "CREATED_AT", "TRANSACTION_COUNT"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"01abc", "-", "3"}, strings.Fields(lines[1]))
	assert.NotContains(t, buf.String(), "secret")
	assert.NotContains(t, buf.String(), "more")

	buf.Reset()
	require.NoError(t, (&TableFormatter{Wide: true}).Format(&buf, rows))
	assert.Contains(t, buf.String(), "DETAIL")
	assert.Contains(t, buf.String(), "more")
}

func TestTableFormatter_PointerSliceSkipsNil(t *testing.T) {
	rows := []*forkRow{{ID: "a"}, nil, {ID: "b"}}

	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{NoHeaders: true}).Format(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "a"))
	assert.True(t, strings.HasPrefix(lines[1], "b"))
}

func TestTableFormatter_Struct(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, &forkRow{ID: "01abc", TxCount: 7}))

	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "transaction_count  7")
	assert.NotContains(t, out, "internal")
}

func TestTableFormatter_MapSorted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{NoHeaders: true}).Format(&buf, map[string]any{
		"version": "1.0.0",
		"active":  2,
		"healthy": true,
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"active", "2"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"healthy", "true"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"version", "1.0.0"}, strings.Fields(lines[2]))
}

func TestTableFormatter_ScalarSliceAndFallback(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, []uint64{5, 6}))
	assert.Equal(t, []string{"VALUE", "5", "6"}, strings.Fields(buf.String()))

	buf.Reset()
	require.NoError(t, (&TableFormatter{}).Format(&buf, "Success"))
	assert.Equal(t, "\"Success\"\n", buf.String())

	buf.Reset()
	require.NoError(t, (&TableFormatter{}).Format(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestTable_Render(t *testing.T) {
	table := &Table{Headers: []string{"OWNER", "AMOUNT"}}
	table.AddRow("alice", "1000")
	table.AddRow("bob", "5")

	var buf bytes.Buffer
	require.NoError(t, table.Render(&buf))
	assert.Equal(t, "OWNER  AMOUNT\nalice  1000\nbob    5\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, map[string]uint64{"lamports": 42}))
	assert.JSONEq(t, `{"lamports":42}`, buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	data := struct {
		ForkID   string   `json:"fork_id"`
		Lamports uint64   `json:"lamports"`
		Flag     string   `json:"flag"`
		Tags     []string `json:"tags"`
	}{ForkID: "01abc", Lamports: 42, Flag: "true", Tags: []string{"a", "b"}}

	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, data))

	want := "fork_id: 01abc\nlamports: 42\nflag: \"true\"\ntags:\n  - a\n  - b\n"
	assert.Equal(t, want, buf.String())
}
