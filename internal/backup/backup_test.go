package backup_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flatkv/flatkv/internal/backup"
	"github.com/flatkv/flatkv/internal/store"
	_ "github.com/flatkv/flatkv/internal/store/leveldb"
	_ "github.com/flatkv/flatkv/internal/store/pebble"
)

var engineNames = []string{"pebble", "leveldb"}

func testOptions(engine string) store.Options {
	return store.Options{
		Engine:          engine,
		CreateIfMissing: true,
		SyncWrites:      true,
	}
}

// slotDirs counts the checkpoint directories in a backup dir, ignoring
// the manifest.
func slotDirs(t *testing.T, dir string) int {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			count++
		}
	}
	return count
}

func TestBackupRestoreRoundtrip(t *testing.T) {
	for _, engine := range engineNames {
		t.Run(engine, func(t *testing.T) {
			base := t.TempDir()
			dbPath := filepath.Join(base, "db")
			backupDir := filepath.Join(base, "backups")
			restorePath := filepath.Join(base, "restored")

			s, err := store.Open(dbPath, testOptions(engine))
			require.NoError(t, err)

			pairs := map[string]string{
				"alpha": "1",
				"beta":  "2",
				"gamma": "",
			}
			for k, v := range pairs {
				require.NoError(t, s.Put([]byte(k), []byte(v)))
			}

			require.NoError(t, backup.Create(s, backupDir, true))

			// Written after the backup; must be absent post-restore.
			require.NoError(t, s.Put([]byte("late"), []byte("x")))
			require.NoError(t, s.Close())

			require.NoError(t, backup.RestoreLatest(backupDir, restorePath))

			restored, err := store.Open(restorePath, testOptions(engine))
			require.NoError(t, err)
			defer restored.Close()

			for k, v := range pairs {
				got, found, err := restored.Get([]byte(k))
				require.NoError(t, err)
				require.True(t, found, "key %q missing after restore", k)
				require.Equal(t, []byte(v), got)
			}

			_, found, err := restored.Get([]byte("late"))
			require.NoError(t, err)
			require.False(t, found)
		})
	}
}

func TestRestoreLatestEmptyDirectory(t *testing.T) {
	base := t.TempDir()

	err := backup.RestoreLatest(filepath.Join(base, "no-backups"), filepath.Join(base, "out"))
	require.Error(t, err)
	require.ErrorIs(t, err, store.ErrNoBackups)
	require.Equal(t, store.KindNotFound, store.KindOf(err))
}

func TestBackupSingleSlot(t *testing.T) {
	base := t.TempDir()
	backupDir := filepath.Join(base, "backups")

	s, err := store.Open(filepath.Join(base, "db"), testOptions("pebble"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put([]byte("k"), []byte("v1")))
	require.NoError(t, backup.Create(s, backupDir, true))

	first, err := backup.Latest(backupDir)
	require.NoError(t, err)

	require.NoError(t, s.Put([]byte("k"), []byte("v2")))
	require.NoError(t, backup.Create(s, backupDir, true))

	second, err := backup.Latest(backupDir)
	require.NoError(t, err)

	// Ids stay monotonic across destroy cycles, and only one slot
	// survives.
	require.Greater(t, second.ID, first.ID)
	require.Equal(t, 1, slotDirs(t, backupDir))

	restorePath := filepath.Join(base, "restored")
	require.NoError(t, backup.RestoreLatest(backupDir, restorePath))

	restored, err := store.Open(restorePath, testOptions("pebble"))
	require.NoError(t, err)
	defer restored.Close()

	got, found, err := restored.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v2"), got)
}

func TestRestoreReplacesExistingDatabase(t *testing.T) {
	base := t.TempDir()
	backupDir := filepath.Join(base, "backups")
	victimPath := filepath.Join(base, "victim")

	s, err := store.Open(filepath.Join(base, "db"), testOptions("pebble"))
	require.NoError(t, err)
	require.NoError(t, s.Put([]byte("keep"), []byte("me")))
	require.NoError(t, backup.Create(s, backupDir, true))
	require.NoError(t, s.Close())

	victim, err := store.Open(victimPath, testOptions("pebble"))
	require.NoError(t, err)
	require.NoError(t, victim.Put([]byte("doomed"), []byte("x")))
	require.NoError(t, victim.Close())

	require.NoError(t, backup.RestoreLatest(backupDir, victimPath))

	restored, err := store.Open(victimPath, testOptions("pebble"))
	require.NoError(t, err)
	defer restored.Close()

	_, found, err := restored.Get([]byte("doomed"))
	require.NoError(t, err)
	require.False(t, found)

	got, found, err := restored.Get([]byte("keep"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("me"), got)
}

func TestCreateValidation(t *testing.T) {
	base := t.TempDir()

	err := backup.Create(nil, filepath.Join(base, "backups"), true)
	require.Error(t, err)
	require.Equal(t, store.KindInvalidArgument, store.KindOf(err))

	s, err := store.Open(filepath.Join(base, "db"), testOptions("pebble"))
	require.NoError(t, err)
	defer s.Close()

	err = backup.Create(s, "", true)
	require.Error(t, err)
	require.Equal(t, store.KindInvalidArgument, store.KindOf(err))
}

func TestLatestRecordsMetadata(t *testing.T) {
	base := t.TempDir()
	backupDir := filepath.Join(base, "backups")
	dbPath := filepath.Join(base, "db")

	s, err := store.Open(dbPath, testOptions("leveldb"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put([]byte("k"), []byte("v")))
	require.NoError(t, backup.Create(s, backupDir, false))

	info, err := backup.Latest(backupDir)
	require.NoError(t, err)
	require.Equal(t, "leveldb", info.Engine)
	require.Equal(t, dbPath, info.SourcePath)
	require.False(t, info.Flushed)
	require.False(t, info.CreatedAt.IsZero())
}
