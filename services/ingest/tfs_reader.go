package ingest

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"collimator-gaps/models"
	"collimator-gaps/utils"
)

// TFSReader parses MAD-X TFS optics tables.
//
// Layout of a TFS file:
//
//	@ NAME   %05s "TWISS"        header parameter
//	* NAME   KEYWORD  S   BETX   column names
//	$ %s     %s       %le %le    column formats
//	  "IP1"  "MARKER" 0   0.55   one row per element
type TFSReader struct {
	log *utils.Logger

	// DeriveBeamSizes adds SIGMAX/SIGMAY from beta, dispersion and the
	// header emittances when the table does not carry them.
	DeriveBeamSizes bool
}

// NewTFSReader returns a reader that derives missing beam sizes.
func NewTFSReader(log *utils.Logger) *TFSReader {
	if log == nil {
		log = utils.L()
	}
	return &TFSReader{log: log, DeriveBeamSizes: true}
}

// ReadFile opens path and parses it.
func (r *TFSReader) ReadFile(path string) (*models.OpticsTable, error) {
	f, err := os.Open(path)
	if err != nil {
		// Unreadable and missing files are both reported as not found.
		return nil, &models.GapError{Kind: models.ErrInputNotFound, Err: err}
	}
	defer f.Close()

	t, err := r.Read(f)
	if err != nil {
		return nil, err
	}
	r.log.Info("optics table loaded  (path=%s, rows=%d, columns=%d)", path, t.Len(), len(t.Columns))
	return t, nil
}

// Read parses a TFS table from src.
func (r *TFSReader) Read(src io.Reader) (*models.OpticsTable, error) {
	header := map[string]string{}
	var columns, formats []string
	var rows []models.OpticsRow

	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch line[0] {
		case '@':
			key, val, err := parseHeaderLine(line)
			if err != nil {
				return nil, models.Malformed("", "", fmt.Errorf("line %d: %w", lineNo, err))
			}
			header[key] = val
		case '*':
			columns = strings.Fields(line[1:])
		case '$':
			formats = strings.Fields(line[1:])
		default:
			if columns == nil {
				return nil, models.Malformed("", "", fmt.Errorf("line %d: data before column names", lineNo))
			}
			row, err := parseDataLine(line, columns, formats)
			if err != nil {
				return nil, models.Malformed("", "", fmt.Errorf("line %d: %w", lineNo, err))
			}
			rows = append(rows, row)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, models.Malformed("", "", fmt.Errorf("scan optics table: %w", err))
	}

	if columns == nil {
		return nil, models.Malformed("", "", fmt.Errorf("no column line (*) found"))
	}
	for _, required := range []string{models.ColName, models.ColKeyword} {
		if !contains(columns, required) {
			return nil, models.Malformed("", required, fmt.Errorf("required column missing"))
		}
	}

	t := models.NewOpticsTable(header, columns, rows)
	if r.DeriveBeamSizes {
		r.deriveBeamSizes(t)
	}
	return t, nil
}

// parseHeaderLine splits "@ KEY %fmt value" into key and unquoted value.
func parseHeaderLine(line string) (string, string, error) {
	fields := tokenize(line[1:])
	if len(fields) < 2 {
		return "", "", fmt.Errorf("header parameter needs a name and a format")
	}
	key := fields[0]
	if len(fields) == 2 {
		return key, "", nil
	}
	return key, unquote(strings.Join(fields[2:], " ")), nil
}

func parseDataLine(line string, columns, formats []string) (models.OpticsRow, error) {
	fields := tokenize(line)
	if len(fields) != len(columns) {
		return models.OpticsRow{}, fmt.Errorf("got %d fields, want %d", len(fields), len(columns))
	}

	row := models.OpticsRow{
		Strings: make(map[string]string),
		Numbers: make(map[string]float64),
	}
	for i, col := range columns {
		raw := fields[i]
		if isStringColumn(i, raw, formats) {
			row.Strings[col] = unquote(raw)
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.OpticsRow{}, fmt.Errorf("column %s: %w", col, err)
		}
		row.Numbers[col] = v
	}
	return row, nil
}

// isStringColumn uses the $ format line when present and falls back to
// quoting when it is not.
func isStringColumn(i int, raw string, formats []string) bool {
	if i < len(formats) {
		return strings.HasSuffix(formats[i], "s")
	}
	return strings.HasPrefix(raw, `"`)
}

// tokenize splits on whitespace, keeping double-quoted strings whole.
func tokenize(s string) []string {
	var out []string
	var cur strings.Builder
	inQuote, inToken := false, false
	for _, c := range s {
		switch {
		case c == '"':
			inQuote = !inQuote
			inToken = true
			cur.WriteRune(c)
		case (c == ' ' || c == '\t') && !inQuote:
			if inToken {
				out = append(out, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			inToken = true
			cur.WriteRune(c)
		}
	}
	if inToken {
		out = append(out, cur.String())
	}
	return out
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// deriveBeamSizes fills SIGMAX/SIGMAY as sqrt(beta*emittance + (D*sigE)^2)
// when the table lacks them. SIGE defaults to zero.
func (r *TFSReader) deriveBeamSizes(t *models.OpticsTable) {
	sige, _ := t.HeaderFloat("SIGE")
	planes := []struct{ sigma, beta, disp, emit string }{
		{models.ColSigmaX, "BETX", "DX", "EX"},
		{models.ColSigmaY, "BETY", "DY", "EY"},
	}
	for _, p := range planes {
		if t.HasColumn(p.sigma) || !t.HasColumn(p.beta) {
			continue
		}
		emit, ok := t.HeaderFloat(p.emit)
		if !ok {
			r.log.Debug("cannot derive %s: header %s missing", p.sigma, p.emit)
			continue
		}
		for i := range t.Rows {
			beta := t.Rows[i].Numbers[p.beta]
			disp := t.Rows[i].Numbers[p.disp]
			t.Rows[i].Numbers[p.sigma] = math.Sqrt(beta*emit + (disp*sige)*(disp*sige))
		}
		t.Columns = append(t.Columns, p.sigma)
		r.log.Info("derived %s from %s and %s=%g (SIGE=%g)", p.sigma, p.beta, p.emit, emit, sige)
	}
}
