package dataset

import (
	"bytes"
	"compress/gzip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const civSnapshot = `civ,map,match_elo_bucket,wins
Franks,Arena,1000-1200,5
Mongols,Arena,1000-1200,3
Britons,Arabia,1200-1400,7
`

func TestDecodePlainCSV(t *testing.T) {
	ds, err := Decode(strings.NewReader(civSnapshot), "civ.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"civ", "map", "match_elo_bucket", "wins"}, ds.Columns())
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 3, ds.SelectedCount(), "rows start selected")
	assert.Equal(t, "civ.csv", ds.Source)
}

func TestDecodeGzipCSV(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(civSnapshot))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	ds, err := Decode(&buf, "civ.csv.gz")
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.True(t, ds.HasColumn("match_elo_bucket"))
}

func TestDecodeStripsBOM(t *testing.T) {
	ds, err := Decode(strings.NewReader("\xef\xbb\xbfciv,wins\nFranks,1\n"), "bom.csv")
	require.NoError(t, err)
	assert.True(t, ds.HasColumn("civ"))
}

func TestDecodeErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := Decode(strings.NewReader(""), "empty.csv")
		assert.ErrorIs(t, err, ErrEmptySnapshot)
	})

	t.Run("duplicate header", func(t *testing.T) {
		_, err := Decode(strings.NewReader("civ,civ\nFranks,Franks\n"), "dup.csv")
		assert.ErrorIs(t, err, ErrDuplicateColumn)
	})

	t.Run("ragged row", func(t *testing.T) {
		_, err := Decode(strings.NewReader("civ,wins\nFranks\n"), "ragged.csv")
		require.Error(t, err)
	})
}

func TestDistinctIgnoresSelection(t *testing.T) {
	ds, err := Decode(strings.NewReader(civSnapshot), "civ.csv")
	require.NoError(t, err)
	ds.Rows[0].Selected = false

	vals, err := ds.Distinct("map")
	require.NoError(t, err)
	assert.Equal(t, []string{"Arabia", "Arena"}, vals)

	_, err = ds.Distinct("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestSelectedRowsAndSelectAll(t *testing.T) {
	ds, err := Decode(strings.NewReader(civSnapshot), "civ.csv")
	require.NoError(t, err)

	ds.Rows[1].Selected = false
	rows := ds.SelectedRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Franks", rows[0].Values[0])
	assert.Equal(t, "Britons", rows[1].Values[0])

	ds.SelectAll()
	assert.Equal(t, 3, ds.SelectedCount())
}

func TestEncodeSelectedOnly(t *testing.T) {
	ds, err := Decode(strings.NewReader(civSnapshot), "civ.csv")
	require.NoError(t, err)
	ds.Rows[1].Selected = false

	var buf bytes.Buffer
	require.NoError(t, ds.Encode(&buf, true))
	out := buf.String()
	assert.Contains(t, out, "Franks")
	assert.NotContains(t, out, "Mongols")
}

func TestNumber(t *testing.T) {
	v, err := Number(" 12.5 ")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	v, err = Number("")
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = Number("abc")
	assert.Error(t, err)
}
