package views

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"collimator-gaps/models"
)

// BuildSettingsWorkbook lays recs out on a single sheet: a bold header row
// followed by one row per collimator, gaps as numeric cells.
func BuildSettingsWorkbook(recs []models.CollimatorRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SettingsSheet); err != nil {
		f.Close()
		return nil, err
	}

	for i, h := range SettingsColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SettingsSheet, cell, h); err != nil {
			f.Close()
			return nil, err
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(SettingsSheet, 1, 1, headerStyle)
	}
	sciStyle, err := f.NewStyle(&excelize.Style{NumFmt: 11}) // 0.00E+00
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, r := range recs {
		row := i + 2
		values := []any{r.Name, r.Material, r.XGap, r.YGap}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(SettingsSheet, cell, v); err != nil {
				f.Close()
				return nil, err
			}
		}
		_ = f.SetCellStyle(SettingsSheet, fmt.Sprintf("C%d", row), fmt.Sprintf("D%d", row), sciStyle)
	}
	_ = f.SetColWidth(SettingsSheet, "A", "B", 16)
	_ = f.SetColWidth(SettingsSheet, "C", "D", 14)
	return f, nil
}

// WriteSettingsXLSX writes recs as a workbook at path. The workbook is saved
// to a temporary file first and renamed into place.
func WriteSettingsXLSX(path string, recs []models.CollimatorRecord) error {
	wb, err := BuildSettingsWorkbook(recs)
	if err != nil {
		return writeFailed(path, fmt.Errorf("build workbook: %w", err))
	}
	defer wb.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return writeFailed(path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := wb.Write(tmp); err != nil {
		tmp.Close()
		return writeFailed(path, fmt.Errorf("write workbook: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return writeFailed(path, fmt.Errorf("close: %w", err))
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return writeFailed(path, fmt.Errorf("chmod: %w", err))
	}
	if err := os.Rename(tmpName, path); err != nil {
		return writeFailed(path, fmt.Errorf("rename: %w", err))
	}
	return nil
}

// ReadSettingsXLSX reads records back from a workbook written by
// WriteSettingsXLSX.
func ReadSettingsXLSX(path string) ([]models.CollimatorRecord, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &models.GapError{Kind: models.ErrInputNotFound, Err: err}
		}
		return nil, models.Malformed("", "", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows(SettingsSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, models.Malformed("", "", err)
	}

	var out []models.CollimatorRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < len(SettingsColumns) {
			return nil, models.Malformed("", "", fmt.Errorf("row %d: got %d cells, want %d", i+1, len(row), len(SettingsColumns)))
		}
		rec := models.CollimatorRecord{Name: row[0], Material: row[1]}
		if _, err := fmt.Sscan(row[2], &rec.XGap); err != nil {
			return nil, models.Malformed(rec.Name, SettingsColumns[2], err)
		}
		if _, err := fmt.Sscan(row[3], &rec.YGap); err != nil {
			return nil, models.Malformed(rec.Name, SettingsColumns[3], err)
		}
		out = append(out, rec)
	}
	return out, nil
}
