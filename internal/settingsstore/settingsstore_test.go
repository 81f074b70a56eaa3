package settingsstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/sitedocs/internal/database"
	"github.com/mrlokans/sitedocs/internal/database/settings"
	"github.com/mrlokans/sitedocs/internal/entities"
)

func setupTestStore(t *testing.T, defaultEnableChanges bool) (*SettingsStore, *settings.Repository) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := settings.NewRepository(db.DB)
	return New(repo, defaultEnableChanges), repo
}

func TestGetInt(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		store, _ := setupTestStore(t, true)

		_, ok := store.GetInt(entities.SettingKeyVideoSelection)
		assert.False(t, ok)
	})

	t.Run("round trips through SetInt", func(t *testing.T) {
		store, _ := setupTestStore(t, true)

		require.NoError(t, store.SetInt(entities.SettingKeyVideoSelection, 42))

		value, ok := store.GetInt(entities.SettingKeyVideoSelection)
		assert.True(t, ok)
		assert.Equal(t, int64(42), value)
	})

	t.Run("non-numeric value is treated as unset", func(t *testing.T) {
		store, repo := setupTestStore(t, true)
		require.NoError(t, repo.SetSetting(entities.SettingKeyVideoSelection, "abc"))

		_, ok := store.GetInt(entities.SettingKeyVideoSelection)
		assert.False(t, ok)
	})

	t.Run("empty value is treated as unset", func(t *testing.T) {
		store, repo := setupTestStore(t, true)
		require.NoError(t, repo.SetSetting(entities.SettingKeyVideoSelection, ""))

		_, ok := store.GetInt(entities.SettingKeyVideoSelection)
		assert.False(t, ok)
	})
}

func TestGetEnableChangesInfo(t *testing.T) {
	t.Run("falls back to config", func(t *testing.T) {
		store, _ := setupTestStore(t, false)

		info := store.GetEnableChangesInfo()
		assert.False(t, info.Enabled)
		assert.Equal(t, SourceConfig, info.Source)
	})

	t.Run("database override wins", func(t *testing.T) {
		store, _ := setupTestStore(t, true)
		require.NoError(t, store.SetEnableChanges(false))

		info := store.GetEnableChangesInfo()
		assert.False(t, info.Enabled)
		assert.Equal(t, SourceDatabase, info.Source)
		assert.False(t, store.ChangesEnabled())
	})

	t.Run("clearing the override restores config", func(t *testing.T) {
		store, _ := setupTestStore(t, true)
		require.NoError(t, store.SetEnableChanges(false))
		require.NoError(t, store.ClearEnableChanges())

		assert.True(t, store.ChangesEnabled())
	})
}
