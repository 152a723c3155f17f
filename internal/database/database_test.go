package database

import (
	"path/filepath"
	"testing"

	"github.com/pathakanu/nudge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nudge.db")

	db, err := New("", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.Equal(t, "sqlite", db.Dialector.Name())
	assert.True(t, db.Migrator().HasTable(&model.Reminder{}))
	assert.True(t, db.Migrator().HasTable(&model.Session{}))
	assert.True(t, db.Migrator().HasIndex(&model.Reminder{}, "idx_reminders_status"))
}
