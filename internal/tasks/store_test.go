package tasks

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), DatabaseFile)
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tick := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return s, path
}

func TestCreateListTrimsAndPersists(t *testing.T) {
	s, path := openStore(t)
	ctx := context.Background()

	list, err := s.CreateList(ctx, "  Reading  ")
	require.NoError(t, err)
	assert.Equal(t, "Reading", list.Name)
	assert.NotEmpty(t, list.ID)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	lists, err := reopened.Lists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, list.ID, lists[0].ID)
	assert.True(t, list.CreatedAt.Equal(lists[0].CreatedAt))
}

func TestEmptyNamesRejected(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	_, err := s.CreateList(ctx, "   ")
	assert.True(t, errors.Is(err, ErrEmptyName))

	list, err := s.CreateList(ctx, "Inbox")
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, list.ID, "")
	assert.True(t, errors.Is(err, ErrEmptyName))
	assert.True(t, errors.Is(s.RenameList(ctx, list.ID, " "), ErrEmptyName))
}

func TestTasksBelongToList(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	inbox, err := s.CreateList(ctx, "Inbox")
	require.NoError(t, err)
	other, err := s.CreateList(ctx, "Other")
	require.NoError(t, err)

	first, err := s.CreateTask(ctx, inbox.ID, "write note")
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, inbox.ID, "link notes")
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, other.ID, "elsewhere")
	require.NoError(t, err)

	tasks, err := s.Tasks(ctx, inbox.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "write note", tasks[0].Name)
	assert.False(t, tasks[0].Done)

	require.NoError(t, s.SetDone(ctx, first.ID, true))
	tasks, err = s.Tasks(ctx, inbox.ID)
	require.NoError(t, err)
	assert.True(t, tasks[0].Done)
}

func TestUnknownIDs(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	_, err := s.CreateTask(ctx, "missing", "x")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.RenameList(ctx, "missing", "x"), ErrNotFound))
	assert.True(t, errors.Is(s.SetDone(ctx, "missing", true), ErrNotFound))
	assert.True(t, errors.Is(s.DeleteList(ctx, "missing"), ErrNotFound))
}

func TestRenameAndDeleteCascades(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	list, err := s.CreateList(ctx, "Old")
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, list.ID, "task")
	require.NoError(t, err)

	require.NoError(t, s.RenameList(ctx, list.ID, "New"))
	lists, err := s.Lists(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New", lists[0].Name)

	require.NoError(t, s.DeleteList(ctx, list.ID))
	tasks, err := s.Tasks(ctx, list.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(" ")
	assert.Error(t, err)
}

func TestFailedMigrationLeavesNoTrace(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), DatabaseFile))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	files := fstest.MapFS{
		"0001_notes.sql":  {Data: []byte("CREATE TABLE notes (id TEXT PRIMARY KEY);")},
		"0002_broken.sql": {Data: []byte("CREATE TABLE links (id TEXT); INSERT INTO missing VALUES (1);")},
	}
	require.Error(t, migrate(db, files))

	var recorded []string
	rows, err := db.Query(`SELECT name FROM schema_migrations ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		recorded = append(recorded, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"0001_notes.sql"}, recorded)

	var tables int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'links'`).Scan(&tables))
	assert.Zero(t, tables)

	delete(files, "0002_broken.sql")
	assert.NoError(t, migrate(db, files))
}
