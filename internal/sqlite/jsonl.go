package sqlite

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// jsonlWriter writes one JSON object per line, keyed by column name.
type jsonlWriter struct {
	w *bufio.Writer
}

func newJSONLWriter(w io.Writer) *jsonlWriter {
	return &jsonlWriter{w: bufio.NewWriter(w)}
}

func (j *jsonlWriter) writeRow(columns []string, values []any) error {
	obj := make(map[string]any, len(columns))
	for i, c := range columns {
		v := values[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		obj[c] = v
	}
	line, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("encoding row: %w", err)
	}
	if _, err := j.w.Write(line); err != nil {
		return err
	}
	return j.w.WriteByte('\n')
}

func (j *jsonlWriter) flush() error {
	return j.w.Flush()
}

// WriteFileAtomic writes a file through write using the temp-file, fsync,
// rename pattern, so readers never see a partial export.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if err := write(w); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
