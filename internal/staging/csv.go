// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

// Package staging implements the on-disk row-staging buffer: one CSV
// file per child table, append-only, deduplicated before bulk copy.
package staging

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// File is an append-only typed CSV buffer for one table. The header row
// is written at creation; Append never validates row contents.
type File struct {
	path    string
	columns []string
	f       *os.File
	w       *csv.Writer
	rows    int
}

// New creates a staging CSV named "<prefix>_<uuid>.csv" under dir with
// the given header. An empty dir means the system temp directory.
func New(dir, prefix string, columns []string) (*File, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("staging: no columns for %q", prefix)
	}
	if dir == "" {
		dir = os.TempDir()
	}
	name := fmt.Sprintf("%s_%s.csv", prefix, strings.ReplaceAll(uuid.New().String(), "-", ""))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("staging: create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("staging: write header: %w", err)
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	return &File{path: path, columns: cols, f: f, w: w}, nil
}

// Append writes rows in header order. Each row must have exactly one
// value per column.
func (s *File) Append(rows [][]string) error {
	for _, row := range rows {
		if len(row) != len(s.columns) {
			return fmt.Errorf("staging: row has %d values, want %d (%s)", len(row), len(s.columns), s.path)
		}
		if err := s.w.Write(row); err != nil {
			return fmt.Errorf("staging: append to %s: %w", s.path, err)
		}
	}
	s.rows += len(rows)
	return nil
}

// Dedup rewrites the file keeping only the last occurrence per
// conflict-key tuple, preserving the original position of each kept
// row. An empty key list is a no-op.
func (s *File) Dedup(conflictKeys []string) error {
	if len(conflictKeys) == 0 || s.rows == 0 {
		return nil
	}
	keyIdx := make([]int, 0, len(conflictKeys))
	for _, key := range conflictKeys {
		idx := -1
		for i, col := range s.columns {
			if col == key {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("staging: conflict key %q not in columns of %s", key, s.path)
		}
		keyIdx = append(keyIdx, idx)
	}

	if err := s.flushAndClose(); err != nil {
		return err
	}

	in, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("staging: reopen %s: %w", s.path, err)
	}
	records, err := csv.NewReader(in).ReadAll()
	in.Close()
	if err != nil {
		return fmt.Errorf("staging: read back %s: %w", s.path, err)
	}

	header, body := records[0], records[1:]
	last := make(map[string]int, len(body))
	for i, row := range body {
		last[dedupKey(row, keyIdx)] = i
	}

	tmpPath := s.path + ".dedup"
	out, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("staging: create %s: %w", tmpPath, err)
	}
	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		out.Close()
		return fmt.Errorf("staging: rewrite header: %w", err)
	}
	kept := 0
	for i, row := range body {
		if last[dedupKey(row, keyIdx)] != i {
			continue
		}
		if err := w.Write(row); err != nil {
			out.Close()
			return fmt.Errorf("staging: rewrite row: %w", err)
		}
		kept++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		out.Close()
		return fmt.Errorf("staging: flush %s: %w", tmpPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("staging: close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("staging: replace %s: %w", s.path, err)
	}
	s.rows = kept

	return s.reopenAppend()
}

func dedupKey(row []string, keyIdx []int) string {
	parts := make([]string, len(keyIdx))
	for i, idx := range keyIdx {
		parts[i] = row[idx]
	}
	return strings.Join(parts, "\x00")
}

// Path returns the on-disk location of the buffer.
func (s *File) Path() string { return s.path }

// Columns returns the header in write order.
func (s *File) Columns() []string { return s.columns }

// Rows returns the number of data rows appended so far (post-dedup if
// Dedup ran).
func (s *File) Rows() int { return s.rows }

// Empty reports whether the buffer holds no data rows. Header-only
// files are still valid loader inputs.
func (s *File) Empty() bool { return s.rows == 0 }

// Flush forces buffered rows to disk so the file can be read by the
// bulk-copy step.
func (s *File) Flush() error {
	if s.w == nil {
		return nil
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("staging: flush %s: %w", s.path, err)
	}
	return nil
}

// Delete closes and unlinks the buffer. Safe to call more than once.
func (s *File) Delete() error {
	_ = s.flushAndClose()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("staging: delete %s: %w", s.path, err)
	}
	return nil
}

func (s *File) flushAndClose() error {
	if s.w != nil {
		s.w.Flush()
		if err := s.w.Error(); err != nil {
			return fmt.Errorf("staging: flush %s: %w", s.path, err)
		}
		s.w = nil
	}
	if s.f != nil {
		err := s.f.Close()
		s.f = nil
		if err != nil {
			return fmt.Errorf("staging: close %s: %w", s.path, err)
		}
	}
	return nil
}

func (s *File) reopenAppend() error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("staging: reopen %s: %w", s.path, err)
	}
	s.f = f
	s.w = csv.NewWriter(f)
	return nil
}
