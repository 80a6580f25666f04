// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package db

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/cinegraph/internal/kinds"
)

// tempTableName derives a collision-free session temp table name.
func tempTableName(table string) string {
	return fmt.Sprintf("temp_%s_%s", table, strings.ReplaceAll(uuid.New().String(), "-", ""))
}

func createTempSQL(temp, table string) string {
	return fmt.Sprintf("CREATE TEMP TABLE %s (LIKE %s INCLUDING ALL)", temp, table)
}

func copySQL(temp string, columns []string) string {
	return fmt.Sprintf("COPY %s (%s) FROM STDIN WITH CSV HEADER", temp, strings.Join(columns, ","))
}

// deleteScopedSQL clears a child table's rows for every entity staged
// in the scope temp table, making room for the fresh snapshot.
func deleteScopedSQL(table, key, scopeTemp string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s IN (SELECT id FROM %s)", table, key, scopeTemp)
}

// deletePreservingSQL prunes rows inside the staged scope whose id was
// not re-staged, leaving rows outside the scope untouched.
func deletePreservingSQL(table, ownTemp, key, scopeTemp string) string {
	return fmt.Sprintf(
		"DELETE FROM %s WHERE id NOT IN (SELECT id FROM %s) AND %s IN (SELECT id FROM %s)",
		table, ownTemp, key, scopeTemp)
}

// insertSQL moves staged rows from the temp table into the target,
// with the table's conflict handling.
func insertSQL(t kinds.Table, temp string) string {
	cols := strings.Join(t.Columns, ",")
	q := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", t.Name, cols, cols, temp)

	switch t.OnConflict {
	case kinds.InsertIgnore:
		q += fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(t.ConflictKeys, ","))
	case kinds.UpsertUpdate:
		updates := make([]string, 0, len(t.Columns))
		for _, col := range t.Columns {
			if !contains(t.ConflictKeys, col) {
				updates = append(updates, fmt.Sprintf("%s=EXCLUDED.%s", col, col))
			}
		}
		q += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
			strings.Join(t.ConflictKeys, ","), strings.Join(updates, ","))
	}
	return q
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
