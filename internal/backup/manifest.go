package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/flatkv/flatkv/internal/store"
)

// manifestName is the SQLite database tracking the backups held in a
// backup directory. AUTOINCREMENT keeps backup ids monotonically
// increasing even across destroy-old-data cycles.
const manifestName = "MANIFEST.db"

const manifestSchema = `
CREATE TABLE IF NOT EXISTS backups (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	engine      TEXT    NOT NULL,
	source_path TEXT    NOT NULL,
	flushed     INTEGER NOT NULL,
	created_at  TEXT    NOT NULL
)`

// Info describes one stored backup.
type Info struct {
	ID         int64
	Engine     string
	SourcePath string
	Flushed    bool
	CreatedAt  time.Time
}

type manifest struct {
	db *sql.DB
}

// openManifest opens the manifest inside dir, creating it unless
// readOnly. A missing manifest in read-only mode means the directory
// holds no backups.
func openManifest(dir string, readOnly bool) (*manifest, error) {
	path := filepath.Join(dir, manifestName)

	dsn := path
	if readOnly {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, store.ErrNoBackups
			}
			return nil, err
		}
		dsn = "file:" + path + "?mode=ro"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}

	if !readOnly {
		if _, err := db.Exec(manifestSchema); err != nil {
			db.Close()
			return nil, fmt.Errorf("init manifest: %w", err)
		}
	}

	return &manifest{db: db}, nil
}

func (m *manifest) close() error {
	return m.db.Close()
}

func (m *manifest) insert(info Info) (int64, error) {
	res, err := m.db.Exec(
		`INSERT INTO backups (engine, source_path, flushed, created_at) VALUES (?, ?, ?, ?)`,
		info.Engine, info.SourcePath, info.Flushed, info.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (m *manifest) remove(id int64) error {
	_, err := m.db.Exec(`DELETE FROM backups WHERE id = ?`, id)
	return err
}

func (m *manifest) ids() ([]int64, error) {
	rows, err := m.db.Query(`SELECT id FROM backups ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// latest returns the backup with the highest id, or ErrNoBackups.
func (m *manifest) latest() (Info, error) {
	var (
		info    Info
		created string
	)
	err := m.db.QueryRow(
		`SELECT id, engine, source_path, flushed, created_at FROM backups ORDER BY id DESC LIMIT 1`,
	).Scan(&info.ID, &info.Engine, &info.SourcePath, &info.Flushed, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, store.ErrNoBackups
	}
	if err != nil {
		return Info{}, err
	}

	info.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Info{}, fmt.Errorf("manifest timestamp %q: %w", created, err)
	}
	return info, nil
}
