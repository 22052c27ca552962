package controller

import (
	"fmt"
	"path/filepath"
	"strings"

	"collimator-gaps/models"
	"collimator-gaps/services/gaps"
	"collimator-gaps/services/ingest"
	"collimator-gaps/utils"
	"collimator-gaps/views"
)

// GapController runs one settings generation pass:
//
//	optics table ──► ingest.TFSReader ──► gaps.Calculator ──► views (dat | xlsx)
//
// Each run is a single straight-line batch; the first failure aborts it.
type GapController struct {
	cfg    *utils.GapConfig
	format views.OutputFormat
	log    *utils.Logger

	reader *ingest.TFSReader
	calc   *gaps.Calculator
}

// RunSummary reports what a run read and wrote.
type RunSummary struct {
	OpticsPath string
	OutputPath string
	Format     views.OutputFormat
	Records    []models.CollimatorRecord
	ByRank     map[models.Rank]int
}

// NewGapController validates cfg and wires the pipeline stages.
func NewGapController(cfg *utils.GapConfig, log *utils.Logger) (*GapController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gap config: %w", err)
	}
	format, err := views.ParseOutputFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = utils.L()
	}

	return &GapController{
		cfg:    cfg,
		format: format,
		log:    log,
		reader: ingest.NewTFSReader(log),
		calc:   gaps.NewCalculator(cfg.Sigmas, cfg.Materials, log),
	}, nil
}

// Run loads the optics table, computes every collimator and writes the
// settings file.
func (gc *GapController) Run() (*RunSummary, error) {
	gc.log.Info("gap controller started  (optics=%s, type=%s, sigmas=p%g/s%g/t%g/open%g)",
		gc.cfg.Input.OpticsPath, gc.cfg.Input.ElementType,
		gc.cfg.Sigmas.Primary, gc.cfg.Sigmas.Secondary, gc.cfg.Sigmas.Tertiary, gc.cfg.Sigmas.Open)

	table, err := gc.reader.ReadFile(gc.cfg.Input.OpticsPath)
	if err != nil {
		return nil, err
	}

	recs, err := gc.calc.Compute(table, gc.cfg.Input.ElementType)
	if err != nil {
		return nil, err
	}

	if err := gc.write(recs); err != nil {
		return nil, err
	}

	sum := &RunSummary{
		OpticsPath: gc.cfg.Input.OpticsPath,
		OutputPath: gc.cfg.Output.Path,
		Format:     gc.format,
		Records:    recs,
		ByRank:     make(map[models.Rank]int),
	}
	for _, r := range recs {
		sum.ByRank[r.Class.Rank]++
	}

	gc.log.Info("gap controller finished  (collimators=%d, primary=%d, secondary=%d, tertiary=%d, out=%s)",
		len(recs), sum.ByRank[models.Primary], sum.ByRank[models.Secondary], sum.ByRank[models.Tertiary],
		gc.cfg.Output.Path)
	return sum, nil
}

func (gc *GapController) write(recs []models.CollimatorRecord) error {
	switch gc.format {
	case views.FormatXLSX:
		return views.WriteSettingsXLSX(gc.cfg.Output.Path, recs)
	default:
		return views.WriteSettingsFile(gc.cfg.Output.Path, recs)
	}
}

// InspectSettings reads a settings file back. Files ending in .xlsx are read
// as workbooks, anything else as dat.
func InspectSettings(path string) ([]models.CollimatorRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return views.ReadSettingsXLSX(path)
	}
	return views.ReadSettingsFile(path)
}
