package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/chirichan/pwdconv/internal/entities"
)

var ErrVerifyOutput = errors.New("lastpass csv verification failed")

// LastPass mishandles a few typographic characters, so only these are
// folded to ASCII. Everything else passes through.
var fieldReplacer = strings.NewReplacer(
	`"`, `""`,
	"\u2019", "'",
	"\u2013", "-",
	"\u2026", "...",
)

// escapeField quotes s as a single CSV field. Every field is quoted.
func escapeField(s string) string {
	return `"` + fieldReplacer.Replace(s) + `"`
}

// lastPassWriter is a gocsv.CSVWriter that writes the header row as is and
// quotes every field of the rows after it.
type lastPassWriter struct {
	w           *bufio.Writer
	wroteHeader bool
	err         error
}

func newLastPassWriter(w io.Writer) *lastPassWriter {
	return &lastPassWriter{w: bufio.NewWriter(w)}
}

func (l *lastPassWriter) Write(row []string) error {
	if l.err != nil {
		return l.err
	}
	line := row
	if l.wroteHeader {
		line = make([]string, len(row))
		for i, v := range row {
			line[i] = escapeField(v)
		}
	}
	l.wroteHeader = true
	_, l.err = l.w.WriteString(strings.Join(line, ",") + "\n")
	return l.err
}

func (l *lastPassWriter) Flush() {
	if l.err == nil {
		l.err = l.w.Flush()
	}
}

func (l *lastPassWriter) Error() error {
	return l.err
}

// writeLastPassCSV writes the header from the csv tags of LastPassCSV, then
// one line per row.
func writeLastPassCSV(w io.Writer, rows []entities.LastPassCSV) error {
	return gocsv.MarshalCSV(rows, newLastPassWriter(w))
}

// saveLastPassCSV writes rows next to name and renames the file into place,
// so a failed run leaves no partial output behind.
func saveLastPassCSV(name string, rows []entities.LastPassCSV) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return fmt.Errorf("create output %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := writeLastPassCSV(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write output %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write output %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}

// verifyLastPassCSV reads name back and checks it holds want rows.
func verifyLastPassCSV(name string, want int) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("open output %s: %w", name, err)
	}
	defer f.Close()

	var rows []entities.LastPassCSV
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return fmt.Errorf("%w: %v", ErrVerifyOutput, err)
	}
	if len(rows) != want {
		return fmt.Errorf("%w: got %d rows, want %d", ErrVerifyOutput, len(rows), want)
	}
	return nil
}
