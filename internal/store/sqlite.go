package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pictag/internal/errors"
	"pictag/internal/log"
	"pictag/pkg/types"
)

//go:embed db/schema.sql
var dbFS embed.FS

// DefaultDatabase is the SQLite file written into each image directory
const DefaultDatabase = ".pictag.db"

// SQLiteStore keeps the document in a SQLite database inside the image
// directory. Each call opens the database of the directory it is given.
type SQLiteStore struct {
	filename string
}

// NewSQLiteStore creates a SQLite store; an empty filename means
// DefaultDatabase
func NewSQLiteStore(filename string) *SQLiteStore {
	if filename == "" {
		filename = DefaultDatabase
	}
	return &SQLiteStore{filename: filename}
}

func (s *SQLiteStore) path(directory, filename string) string {
	if filename == "" {
		filename = s.filename
	}
	return filepath.Join(directory, filename)
}

// openDatabase opens path and applies the embedded schema
func openDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to open SQLite database", err).WithContext("path", path)
	}

	schemaSQL, err := dbFS.ReadFile("db/schema.sql")
	if err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("failed to read schema SQL", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("failed to initialize database schema", err).WithContext("path", path)
	}
	return db, nil
}

// LoadConfig reads the document. A database that was never saved to is
// reported as ConfigNotFound.
func (s *SQLiteStore) LoadConfig(ctx context.Context, directory, filename string) (*types.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkDirectory(directory); err != nil {
		return nil, err
	}
	path := s.path(directory, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NewConfigError("category database not found", path, errors.ConfigNotFound, err)
	}

	db, err := openDatabase(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var saved int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM meta").Scan(&saved); err != nil {
		return nil, errors.NewDatabaseError("failed to read meta", err).WithOperation("load")
	}
	if saved == 0 {
		return nil, errors.NewConfigError("category database is empty", path, errors.ConfigNotFound, nil)
	}

	doc := &types.Document{}
	if doc.Categories, err = loadCategories(ctx, db); err != nil {
		return nil, err
	}
	if doc.ImageCategories, err = loadAssignments(ctx, db); err != nil {
		return nil, err
	}
	if doc.Hotkeys, err = loadHotkeys(ctx, db); err != nil {
		return nil, err
	}

	log.LogWithFields(
		log.F("path", path),
		log.F("categories", len(doc.Categories)),
		log.F("images", len(doc.ImageCategories)),
	).Debug("Loaded category database")
	return doc, nil
}

func loadCategories(ctx context.Context, db *sql.DB) ([]types.Category, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, name, color, exclusive_with FROM categories ORDER BY position")
	if err != nil {
		return nil, errors.NewDatabaseError("failed to query categories", err).WithOperation("load")
	}
	defer rows.Close()

	var out []types.Category
	for rows.Next() {
		var c types.Category
		var exclusive string
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &exclusive); err != nil {
			return nil, errors.NewDatabaseError("failed to scan category row", err)
		}
		if err := json.Unmarshal([]byte(exclusive), &c.MutuallyExclusiveWith); err != nil {
			return nil, errors.NewDatabaseError("failed to parse exclusion set", err).WithContext("category", c.ID)
		}
		if len(c.MutuallyExclusiveWith) == 0 {
			c.MutuallyExclusiveWith = nil
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("error iterating category rows", err)
	}
	return out, nil
}

func loadAssignments(ctx context.Context, db *sql.DB) ([]types.ImageCategoryEntry, error) {
	rows, err := db.QueryContext(ctx, "SELECT path, category_id, assigned_at FROM image_categories ORDER BY path, position")
	if err != nil {
		return nil, errors.NewDatabaseError("failed to query assignments", err).WithOperation("load")
	}
	defer rows.Close()

	var out []types.ImageCategoryEntry
	for rows.Next() {
		var path, categoryID, assignedAt string
		if err := rows.Scan(&path, &categoryID, &assignedAt); err != nil {
			return nil, errors.NewDatabaseError("failed to scan assignment row", err)
		}
		if len(out) == 0 || out[len(out)-1].Path != path {
			out = append(out, types.ImageCategoryEntry{Path: path})
		}
		last := &out[len(out)-1]
		last.Assignments = append(last.Assignments, types.CategoryAssignment{
			CategoryID: categoryID,
			AssignedAt: types.ParseTimestamp(assignedAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("error iterating assignment rows", err)
	}
	return out, nil
}

func loadHotkeys(ctx context.Context, db *sql.DB) ([]types.HotkeyConfig, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, key, modifiers, action FROM hotkeys ORDER BY position")
	if err != nil {
		return nil, errors.NewDatabaseError("failed to query hotkeys", err).WithOperation("load")
	}
	defer rows.Close()

	var out []types.HotkeyConfig
	for rows.Next() {
		var h types.HotkeyConfig
		var mods string
		if err := rows.Scan(&h.ID, &h.Key, &mods, &h.Action); err != nil {
			return nil, errors.NewDatabaseError("failed to scan hotkey row", err)
		}
		if err := json.Unmarshal([]byte(mods), &h.Modifiers); err != nil {
			return nil, errors.NewDatabaseError("failed to parse modifiers", err).WithContext("hotkey", h.ID)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("error iterating hotkey rows", err)
	}
	return out, nil
}

// SaveConfig replaces every row in one transaction
func (s *SQLiteStore) SaveConfig(ctx context.Context, directory, filename string, doc *types.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkDirectory(directory); err != nil {
		return err
	}
	path := s.path(directory, filename)
	doc = normalizeDocument(doc)

	db, err := openDatabase(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseError("failed to begin transaction", err).WithOperation("save")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"categories", "image_categories", "hotkeys"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.NewDatabaseError("failed to clear table", err).WithOperation("save").WithContext("table", table)
		}
	}

	for i, c := range doc.Categories {
		exclusive, err := json.Marshal(nonNil(c.MutuallyExclusiveWith))
		if err != nil {
			return errors.NewDatabaseError("failed to encode exclusion set", err).WithContext("category", c.ID)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO categories (id, position, name, color, exclusive_with) VALUES (?, ?, ?, ?, ?)",
			c.ID, i, c.Name, c.Color, string(exclusive),
		); err != nil {
			return errors.NewDatabaseError("failed to save category", err).WithOperation("save").WithContext("category", c.ID)
		}
	}

	for _, entry := range doc.ImageCategories {
		for i, a := range entry.Assignments {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO image_categories (path, position, category_id, assigned_at) VALUES (?, ?, ?, ?)",
				entry.Path, i, a.CategoryID, a.AssignedAt.Format(time.RFC3339Nano),
			); err != nil {
				return errors.NewDatabaseError("failed to save assignment", err).WithOperation("save").WithContext("path", entry.Path)
			}
		}
	}

	for i, h := range doc.Hotkeys {
		mods, err := json.Marshal(nonNil(h.Modifiers))
		if err != nil {
			return errors.NewDatabaseError("failed to encode modifiers", err).WithContext("hotkey", h.ID)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO hotkeys (id, position, key, modifiers, action) VALUES (?, ?, ?, ?, ?)",
			h.ID, i, h.Key, string(mods), h.Action,
		); err != nil {
			return errors.NewDatabaseError("failed to save hotkey", err).WithOperation("save").WithContext("hotkey", h.ID)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (id, saved_at) VALUES (1, ?)", time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return errors.NewDatabaseError("failed to save meta", err).WithOperation("save")
	}
	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit", err).WithOperation("save")
	}

	log.LogWithFields(log.F("path", path), log.F("categories", len(doc.Categories))).Debug("Saved category database")
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
