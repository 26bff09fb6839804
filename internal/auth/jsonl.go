package auth

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

// readRecords reads every parseable line of the credential file. Malformed
// lines are skipped. exists is false when the file has never been created.
func readRecords(path string) (records []types.UserRecord, exists bool, err error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		line, err := readLine(r)
		if len(line) > 0 {
			var rec types.UserRecord
			if jerr := json.Unmarshal(line, &rec); jerr == nil && rec.Username != "" {
				records = append(records, rec)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, true, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return records, true, nil
}

// readLine returns the next line of r without its line ending. Lines have
// no length limit. At end of input it returns the final unterminated line,
// if any, together with io.EOF.
func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	return bytes.TrimRight(line, "\r\n"), err
}

// appendRecords appends one JSON line per record and fsyncs before
// returning. The file and its directory are created on first use.
func appendRecords(path string, records []types.UserRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			f.Close()
			return fmt.Errorf("encoding record %q: %w", rec.Username, err)
		}
		if _, err := w.Write(b); err != nil {
			f.Close()
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			f.Close()
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
