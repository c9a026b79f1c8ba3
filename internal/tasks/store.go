// Package tasks stores task lists and their tasks in a local SQLite database.
package tasks

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"zettel/internal/tasks/migrations"
)

const DatabaseFile = "tasks.db"

var (
	ErrEmptyName = errors.New("name cannot be empty")
	ErrNotFound  = errors.New("not found")
)

type List struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Task struct {
	ID        string
	ListID    string
	Name      string
	Done      bool
	CreatedAt time.Time
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// Open opens the database at path and applies the embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping sqlite db")
	}
	if err := migrate(db, migrations.FS); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	return &Store{db: db, now: time.Now}, nil
}

// migrate applies every *.sql file in fsys not yet recorded, in name order.
// Each file and its record commit together.
func migrate(db *sql.DB, fsys fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (name TEXT PRIMARY KEY)`); err != nil {
		return err
	}
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		var applied int
		if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, name).Scan(&applied); err != nil {
			return err
		}
		if applied > 0 {
			continue
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		if err := applyMigration(db, name, string(body)); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(db *sql.DB, name, body string) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return errors.Wrapf(err, "begin %s", name)
	}
	if _, err := tx.Exec(body); err != nil {
		_ = tx.Rollback()
		return errors.Wrapf(err, "apply %s", name)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (name) VALUES (?)`, name); err != nil {
		_ = tx.Rollback()
		return errors.Wrapf(err, "record %s", name)
	}
	return errors.Wrapf(tx.Commit(), "commit %s", name)
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Shutdown satisfies shutdown.Shutdownable.
func (s *Store) Shutdown() { _ = s.Close() }

func (s *Store) CreateList(ctx context.Context, name string) (List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return List{}, ErrEmptyName
	}

	list := List{ID: uuid.NewString(), Name: name, CreatedAt: s.now().UTC()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO task_lists (id, name, created_at) VALUES (?, ?, ?)`,
		list.ID, list.Name, toMillis(list.CreatedAt))
	if err != nil {
		return List{}, errors.Wrap(err, "create task list")
	}
	return list, nil
}

func (s *Store) RenameList(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	res, err := s.db.ExecContext(ctx, `UPDATE task_lists SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return errors.Wrap(err, "rename task list")
	}
	return expectOne(res, "task list "+id)
}

func (s *Store) DeleteList(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM task_lists WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete task list")
	}
	return expectOne(res, "task list "+id)
}

func (s *Store) Lists(ctx context.Context) ([]List, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM task_lists ORDER BY created_at, name`)
	if err != nil {
		return nil, errors.Wrap(err, "query task lists")
	}
	defer rows.Close()

	var lists []List
	for rows.Next() {
		var l List
		var created int64
		if err := rows.Scan(&l.ID, &l.Name, &created); err != nil {
			return nil, errors.Wrap(err, "scan task list")
		}
		l.CreatedAt = fromMillis(created)
		lists = append(lists, l)
	}
	return lists, errors.Wrap(rows.Err(), "iterate task lists")
}

func (s *Store) CreateTask(ctx context.Context, listID, name string) (Task, error) {
	name = strings.TrimSpace(name)
	listID = strings.TrimSpace(listID)
	if name == "" {
		return Task{}, ErrEmptyName
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM task_lists WHERE id = ?`, listID).Scan(&exists); err != nil {
		return Task{}, errors.Wrap(err, "lookup task list")
	}
	if exists == 0 {
		return Task{}, errors.Wrapf(ErrNotFound, "task list %s", listID)
	}

	task := Task{ID: uuid.NewString(), ListID: listID, Name: name, CreatedAt: s.now().UTC()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, list_id, name, done, created_at) VALUES (?, ?, ?, 0, ?)`,
		task.ID, task.ListID, task.Name, toMillis(task.CreatedAt))
	if err != nil {
		return Task{}, errors.Wrap(err, "create task")
	}
	return task, nil
}

func (s *Store) Tasks(ctx context.Context, listID string) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, list_id, name, done, created_at FROM tasks WHERE list_id = ? ORDER BY created_at, name`, listID)
	if err != nil {
		return nil, errors.Wrap(err, "query tasks")
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var created int64
		if err := rows.Scan(&t.ID, &t.ListID, &t.Name, &t.Done, &created); err != nil {
			return nil, errors.Wrap(err, "scan task")
		}
		t.CreatedAt = fromMillis(created)
		tasks = append(tasks, t)
	}
	return tasks, errors.Wrap(rows.Err(), "iterate tasks")
}

func (s *Store) SetDone(ctx context.Context, id string, done bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET done = ? WHERE id = ?`, done, id)
	if err != nil {
		return errors.Wrap(err, "update task")
	}
	return expectOne(res, "task "+id)
}

func expectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errors.Wrap(ErrNotFound, what)
	}
	return nil
}
