package controller

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"collimator-gaps/models"
	"collimator-gaps/utils"
	"collimator-gaps/views"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const ringTFS = `@ TYPE %05s "TWISS"
* NAME KEYWORD S SIGMAX SIGMAY
$ %s %s %le %le %le
"START"      "MARKER"      0.0  0.002   0.0005
"TCP.H.B1"   "RCOLLIMATOR" 1.0  0.1     0.1
"D1"         "DRIFT"       2.0  0.001   0.002
"COLPRIMX"   "RCOLLIMATOR" 3.0  0.1     0.1
"D2"         "DRIFT"       4.0  0.0003  0.0004
"TERT.X.B1"  "RCOLLIMATOR" 5.0  0.1     0.1
`

// testConfig points a default config at a temp optics file and output path.
func testConfig(t *testing.T, tfs string) *utils.GapConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := utils.DefaultGapConfig()
	cfg.Input.OpticsPath = filepath.Join(dir, "ring.tfs")
	cfg.Output.Path = filepath.Join(dir, "collimatorSettings.dat")
	require.NoError(t, os.WriteFile(cfg.Input.OpticsPath, []byte(tfs), 0644))
	return cfg
}

func TestGapController_Run(t *testing.T) {
	cfg := testConfig(t, ringTFS)
	gc, err := NewGapController(cfg, utils.NewNopLogger())
	require.NoError(t, err)

	sum, err := gc.Run()
	require.NoError(t, err)
	require.Len(t, sum.Records, 3)
	assert.Equal(t, views.FormatDat, sum.Format)
	assert.Equal(t, 1, sum.ByRank[models.Primary])
	assert.Equal(t, 1, sum.ByRank[models.Secondary])
	assert.Equal(t, 1, sum.ByRank[models.Tertiary])

	data, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	want := "# Collimator Settings\n" +
		"name      \tmaterial\txsize[m]\tysize[m]\n" +
		"TCP.H.B1  \tcopper         \t2.00000000e+00\t3.50000000e-03\n" +
		"COLPRIMX  \tcarbon         \t6.00000000e-03\t2.00000000e+00\n" +
		"TERT.X.B1 \ttungsten       \t3.00000000e-03\t4.00000000e-03\n"
	assert.Equal(t, want, string(data))
}

func TestGapController_RunXLSX(t *testing.T) {
	cfg := testConfig(t, ringTFS)
	cfg.Output.Path = filepath.Join(filepath.Dir(cfg.Output.Path), "settings.xlsx")
	cfg.Output.Format = "xlsx"

	gc, err := NewGapController(cfg, utils.NewNopLogger())
	require.NoError(t, err)
	_, err = gc.Run()
	require.NoError(t, err)

	recs, err := InspectSettings(cfg.Output.Path)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "COLPRIMX", recs[1].Name)
	assert.InDelta(t, 0.006, recs[1].XGap, 1e-15)
}

func TestGapController_NoCollimatorsWritesHeaderOnly(t *testing.T) {
	cfg := testConfig(t, ringTFS)
	cfg.Input.ElementType = "ECOLLIMATOR"

	gc, err := NewGapController(cfg, utils.NewNopLogger())
	require.NoError(t, err)
	sum, err := gc.Run()
	require.NoError(t, err)
	assert.Empty(t, sum.Records)

	recs, err := InspectSettings(cfg.Output.Path)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestGapController_Errors(t *testing.T) {
	t.Run("missing optics", func(t *testing.T) {
		cfg := testConfig(t, ringTFS)
		cfg.Input.OpticsPath += ".missing"
		gc, err := NewGapController(cfg, utils.NewNopLogger())
		require.NoError(t, err)
		_, err = gc.Run()
		assert.ErrorIs(t, err, models.ErrInputNotFound)
	})

	t.Run("collimator first", func(t *testing.T) {
		cfg := testConfig(t, "* NAME KEYWORD SIGMAX SIGMAY\n\"TCP\" \"RCOLLIMATOR\" 1 1\n")
		gc, err := NewGapController(cfg, utils.NewNopLogger())
		require.NoError(t, err)
		_, err = gc.Run()
		assert.ErrorIs(t, err, models.ErrInputMalformed)
		assert.Contains(t, err.Error(), "TCP")

		_, statErr := os.Stat(cfg.Output.Path)
		assert.True(t, os.IsNotExist(statErr), "no output on failure")
	})

	t.Run("unwritable output", func(t *testing.T) {
		cfg := testConfig(t, ringTFS)
		cfg.Output.Path = filepath.Join(filepath.Dir(cfg.Output.Path), "missing", "out.dat")
		gc, err := NewGapController(cfg, utils.NewNopLogger())
		require.NoError(t, err)
		_, err = gc.Run()
		assert.ErrorIs(t, err, models.ErrOutputWriteFailed)
	})

	t.Run("bad config", func(t *testing.T) {
		cfg := utils.DefaultGapConfig()
		cfg.Sigmas.Tertiary = 0
		_, err := NewGapController(cfg, nil)
		assert.ErrorContains(t, err, "sigmas.tertiary")

		cfg = utils.DefaultGapConfig()
		cfg.Output.Format = "csv"
		_, err = NewGapController(cfg, nil)
		assert.ErrorContains(t, err, "unknown output format")
	})
}
