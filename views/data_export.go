package views

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"collimator-gaps/models"
)

// SettingsWriter writes a settings file through a temporary file in the
// target directory. Nothing appears at the target path until Commit; Close
// without Commit removes the temporary file.
//
// Typical use:
//
//	w, err := NewSettingsWriter(path, 0)
//	if err != nil { ... }
//	defer w.Close()
//	for _, r := range recs { w.WriteRecord(&r) }
//	return w.Commit()
type SettingsWriter struct {
	path      string
	file      *os.File
	buf       *bufio.Writer
	rows      uint64
	err       error
	committed bool
}

// NewSettingsWriter opens a temporary file next to path and writes the
// title and column header lines.
func NewSettingsWriter(path string, bufSizeBytes int) (*SettingsWriter, error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, writeFailed(path, fmt.Errorf("create temp in %s: %w", dir, err))
	}
	if err := f.Chmod(0644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, writeFailed(path, fmt.Errorf("chmod temp: %w", err))
	}

	if bufSizeBytes <= 0 {
		bufSizeBytes = 64 * 1024
	}

	w := &SettingsWriter{
		path: path,
		file: f,
		buf:  bufio.NewWriterSize(f, bufSizeBytes),
	}
	w.writeLine(models.SettingsTitle)
	w.writeLine(strings.Join(models.CollimatorRecord{}.SettingsHeader(), "\t"))
	if w.err != nil {
		w.Close()
		return nil, w.err
	}
	return w, nil
}

// WriteRecord appends one data line. The first failure sticks and is
// reported by Commit.
func (w *SettingsWriter) WriteRecord(rec *models.CollimatorRecord) {
	w.writeLine(strings.Join(rec.SettingsRow(), "\t"))
	if w.err == nil {
		w.rows++
	}
}

func (w *SettingsWriter) writeLine(s string) {
	if w.err != nil {
		return
	}
	if _, err := w.buf.WriteString(s + "\n"); err != nil {
		w.err = writeFailed(w.path, err)
	}
}

// Commit flushes, syncs and closes the temporary file, then renames it over
// the target path.
func (w *SettingsWriter) Commit() error {
	if w.committed {
		return nil
	}
	if w.err != nil {
		return w.err
	}
	if err := w.buf.Flush(); err != nil {
		return writeFailed(w.path, fmt.Errorf("flush: %w", err))
	}
	if err := w.file.Sync(); err != nil {
		return writeFailed(w.path, fmt.Errorf("sync: %w", err))
	}
	if err := w.file.Close(); err != nil {
		return writeFailed(w.path, fmt.Errorf("close: %w", err))
	}
	if err := os.Rename(w.file.Name(), w.path); err != nil {
		_ = os.Remove(w.file.Name())
		return writeFailed(w.path, fmt.Errorf("rename: %w", err))
	}
	w.committed = true
	return nil
}

// Close discards the temporary file unless Commit succeeded. Safe to call
// more than once.
func (w *SettingsWriter) Close() {
	if w.committed || w.file == nil {
		return
	}
	_ = w.file.Close()
	_ = os.Remove(w.file.Name())
	w.file = nil
}

// Rows returns the number of data lines written (excludes header lines).
func (w *SettingsWriter) Rows() uint64 { return w.rows }

// WriteSettingsFile writes recs to path in the dat format.
func WriteSettingsFile(path string, recs []models.CollimatorRecord) error {
	w, err := NewSettingsWriter(path, 0)
	if err != nil {
		return err
	}
	defer w.Close()

	for i := range recs {
		w.WriteRecord(&recs[i])
	}
	return w.Commit()
}

func writeFailed(path string, err error) error {
	return &models.GapError{Kind: models.ErrOutputWriteFailed, Err: fmt.Errorf("%s: %w", path, err)}
}
