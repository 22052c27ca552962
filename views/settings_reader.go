package views

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"collimator-gaps/models"
)

// ReadSettings parses a dat settings file. Lines starting with '#' and the
// column header line are skipped; every other non-blank line must have four
// tab-separated fields.
func ReadSettings(r io.Reader) ([]models.CollimatorRecord, error) {
	var out []models.CollimatorRecord
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != len(SettingsColumns) {
			return nil, models.Malformed("", "", fmt.Errorf("line %d: got %d fields, want %d", lineNo, len(fields), len(SettingsColumns)))
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if fields[0] == SettingsColumns[0] && fields[1] == SettingsColumns[1] {
			continue
		}

		rec := models.CollimatorRecord{Name: fields[0], Material: fields[1]}
		var err error
		if rec.XGap, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return nil, models.Malformed(rec.Name, SettingsColumns[2], err)
		}
		if rec.YGap, err = strconv.ParseFloat(fields[3], 64); err != nil {
			return nil, models.Malformed(rec.Name, SettingsColumns[3], err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, models.Malformed("", "", err)
	}
	return out, nil
}

// ReadSettingsFile opens and parses a dat settings file.
func ReadSettingsFile(path string) ([]models.CollimatorRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.GapError{Kind: models.ErrInputNotFound, Err: err}
	}
	defer f.Close()
	return ReadSettings(f)
}
