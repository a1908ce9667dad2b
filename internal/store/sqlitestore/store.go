// Package sqlitestore persists items in a single SQLite table.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/idilsaglam/todoreminder/internal/datefmt"
	"github.com/idilsaglam/todoreminder/internal/model"
)

// SchemaVersion is stored in PRAGMA user_version. A database at any other
// version is wiped and recreated; there are no migrations.
const SchemaVersion = 3

const table = "items"

var columns = []string{"id", "title", "description", "is_completed", "is_reminder_set", "due_date"}

// Store is a SQLite-backed item table. Writes are serialised by SQLite.
type Store struct {
	db   *sql.DB
	sq   squirrel.StatementBuilderType
	path string
	loc  *time.Location

	// Wiped reports whether Open dropped an older schema.
	Wiped bool
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	// immediate transactions so InsertIfEmpty takes the write lock before counting
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{
		db:   db,
		sq:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		path: path,
		loc:  time.Local,
	}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases database resources.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version == SchemaVersion {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		"DROP TABLE IF EXISTS " + table,
		`CREATE TABLE ` + table + ` (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_completed INTEGER NOT NULL DEFAULT 0,
			is_reminder_set INTEGER NOT NULL DEFAULT 0,
			due_date INTEGER
		)`,
		fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.Wiped = version != 0
	return nil
}

// List returns every item ordered by insertion.
func (s *Store) List(ctx context.Context) ([]model.Item, error) {
	query, args, err := s.sq.Select(columns...).From(table).OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		it, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Get returns the item with id, or model.ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (model.Item, error) {
	query, args, err := s.sq.Select(columns...).From(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Item{}, err
	}
	it, err := s.scan(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, model.ErrNotFound
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("get item %d: %w", id, err)
	}
	return it, nil
}

// Insert stores it under a fresh id and returns the stored copy.
func (s *Store) Insert(ctx context.Context, it model.Item) (model.Item, error) {
	return s.insert(ctx, s.db, it)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insert(ctx context.Context, db execer, it model.Item) (model.Item, error) {
	query, args, err := s.sq.Insert(table).
		Columns(columns[1:]...).
		Values(it.Title, it.Description, it.Completed, it.ReminderSet, toMillis(it.DueDate)).
		ToSql()
	if err != nil {
		return model.Item{}, err
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return model.Item{}, fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Item{}, fmt.Errorf("insert item: %w", err)
	}
	it.ID = id
	return it, nil
}

// Update overwrites every column of the row with it.ID. Last write wins.
func (s *Store) Update(ctx context.Context, it model.Item) error {
	query, args, err := s.sq.Update(table).
		Set("title", it.Title).
		Set("description", it.Description).
		Set("is_completed", it.Completed).
		Set("is_reminder_set", it.ReminderSet).
		Set("due_date", toMillis(it.DueDate)).
		Where(squirrel.Eq{"id": it.ID}).
		ToSql()
	if err != nil {
		return err
	}
	return s.execOne(ctx, query, args, it.ID)
}

// SetReminder writes only the reminder pair of row id, in one statement.
func (s *Store) SetReminder(ctx context.Context, id int64, set bool, due *time.Time) error {
	if !set {
		due = nil
	}
	query, args, err := s.sq.Update(table).
		Set("is_reminder_set", set && due != nil).
		Set("due_date", toMillis(due)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	return s.execOne(ctx, query, args, id)
}

func (s *Store) execOne(ctx context.Context, query string, args []any, id int64) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update item %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item %d: %w", id, err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes row id. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	query, args, err := s.sq.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	return nil
}

// Count returns the number of rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	query, args, err := s.sq.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// InsertIfEmpty inserts items only when the table has no rows, inside one
// immediate transaction. It returns how many rows were inserted.
func (s *Store) InsertIfEmpty(ctx context.Context, items []model.Item) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := s.sq.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	for _, it := range items {
		if _, err := s.insert(ctx, tx, it); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return len(items), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scan(row scanner) (model.Item, error) {
	var (
		it  model.Item
		due any
	)
	if err := row.Scan(&it.ID, &it.Title, &it.Description, &it.Completed, &it.ReminderSet, &due); err != nil {
		return model.Item{}, err
	}
	// an unreadable due date drops the whole pair
	if t, ok := datefmt.ParseStored(due, s.loc); ok {
		it.DueDate = t
	}
	return it.Normalized(), nil
}

func toMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
