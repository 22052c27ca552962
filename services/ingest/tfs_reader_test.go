package ingest

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collimator-gaps/models"
	"collimator-gaps/utils"
)

const ringTFS = `@ NAME             %05s "TWISS"
@ TYPE             %05s "TWISS"
@ TITLE            %18s "model ring, beam 1"
@ EX               %le  1e-09
@ EY               %le  1e-09
@ SIGE             %le  0.001
* NAME        KEYWORD        S      BETX   BETY   DX    DY    SIGMAX   SIGMAY
$ %s          %s             %le    %le    %le    %le   %le   %le      %le
 "RING$START" "MARKER"       0      10     20     0     0     0.002    0.0005
 "TCP.H.B1"   "RCOLLIMATOR"  1.5    11     21     0.1   0     0.0021   0.00051
 "DRIFT 1"    "DRIFT"        3      12     22     0     0     0.003    0.0006
 "TCSG.X.B1"  "RCOLLIMATOR"  4.5    13     23     0     0     0.0031   0.00061
`

func newTestReader() *TFSReader { return NewTFSReader(utils.NewNopLogger()) }

func TestRead_ParsesHeaderColumnsAndRows(t *testing.T) {
	tbl, err := newTestReader().Read(strings.NewReader(ringTFS))
	require.NoError(t, err)

	assert.Equal(t, "TWISS", tbl.Header["TYPE"])
	assert.Equal(t, "model ring, beam 1", tbl.Header["TITLE"])
	ex, ok := tbl.HeaderFloat("EX")
	require.True(t, ok)
	assert.Equal(t, 1e-9, ex)

	assert.Equal(t, []string{"NAME", "KEYWORD", "S", "BETX", "BETY", "DX", "DY", "SIGMAX", "SIGMAY"}, tbl.Columns)
	require.Equal(t, 4, tbl.Len())

	assert.Equal(t, "RING$START", tbl.Rows[0].Name())
	assert.Equal(t, "DRIFT 1", tbl.Rows[2].Name(), "quoted names keep embedded spaces")
	assert.Equal(t, "RCOLLIMATOR", tbl.Rows[1].Keyword())
	assert.Equal(t, 0.0031, tbl.Rows[3].Numbers["SIGMAX"])
	assert.Equal(t, 3, tbl.Rows[3].Index)
}

func TestRead_TableSigmasAreNotRederived(t *testing.T) {
	tbl, err := newTestReader().Read(strings.NewReader(ringTFS))
	require.NoError(t, err)
	assert.Equal(t, 0.002, tbl.Rows[0].Numbers[models.ColSigmaX])
}

func TestRead_DerivesBeamSizes(t *testing.T) {
	src := `@ EX %le 4e-09
@ EY %le 1e-09
@ SIGE %le 0.001
* NAME KEYWORD BETX BETY DX DY
$ %s %s %le %le %le %le
"A" "MARKER" 100 25 2 0
"B" "RCOLLIMATOR" 1 1 0 0
`
	tbl, err := newTestReader().Read(strings.NewReader(src))
	require.NoError(t, err)
	require.True(t, tbl.HasColumn(models.ColSigmaX))
	require.True(t, tbl.HasColumn(models.ColSigmaY))

	sigx, err := tbl.Rows[0].Float(models.ColSigmaX)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(100*4e-9+(2*0.001)*(2*0.001)), sigx, 1e-15)

	sigy, err := tbl.Rows[0].Float(models.ColSigmaY)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(25*1e-9), sigy, 1e-15)
}

func TestRead_NoDerivationWithoutEmittance(t *testing.T) {
	src := `* NAME KEYWORD BETX
$ %s %s %le
"A" "MARKER" 100
`
	tbl, err := newTestReader().Read(strings.NewReader(src))
	require.NoError(t, err)
	assert.False(t, tbl.HasColumn(models.ColSigmaX))

	r := newTestReader()
	r.DeriveBeamSizes = false
	tbl, err = r.Read(strings.NewReader("@ EX %le 1e-9\n" + src))
	require.NoError(t, err)
	assert.False(t, tbl.HasColumn(models.ColSigmaX))
}

func TestRead_WithoutFormatLineUsesQuoting(t *testing.T) {
	src := `* NAME KEYWORD SIGMAX
"A" "MARKER" 1e-3
`
	tbl, err := newTestReader().Read(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "A", tbl.Rows[0].Name())
	assert.Equal(t, 1e-3, tbl.Rows[0].Numbers["SIGMAX"])
}

func TestRead_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{"data before columns", "\"A\" \"MARKER\" 1\n", "data before column names"},
		{"no columns", "@ TYPE %05s \"TWISS\"\n", "no column line"},
		{"field count", "* NAME KEYWORD S\n$ %s %s %le\n\"A\" \"MARKER\"\n", "got 2 fields, want 3"},
		{"bad number", "* NAME KEYWORD S\n$ %s %s %le\n\"A\" \"MARKER\" abc\n", "column S"},
		{"no keyword column", "* NAME S\n$ %s %le\n\"A\" 0\n", "KEYWORD"},
		{"short header", "@ EX\n* NAME KEYWORD\n", "header parameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestReader().Read(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrInputMalformed)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ring.tfs")
	require.NoError(t, os.WriteFile(path, []byte(ringTFS), 0644))

	tbl, err := newTestReader().ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.Len())

	_, err = newTestReader().ReadFile(filepath.Join(dir, "missing.tfs"))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInputNotFound)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{`"A B"`, "1", `""`, "x"}, tokenize(`  "A B"   1 ""	x `))
	assert.Nil(t, tokenize("   "))
}
