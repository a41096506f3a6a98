package backup

import (
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// restoreCopyConcurrency bounds the parallel file copies during a
// restore.
const restoreCopyConcurrency = 4

// RestoreLatest restores the most recent backup in backupDir into
// dbPath, in place: whatever lives at dbPath first, including any
// pre-restore log files, is discarded. Returns a NotFound-classified
// error when the directory holds no backups.
//
// Running RestoreLatest concurrently with a Create or an open store on
// the same dbPath is a caller error.
func RestoreLatest(backupDir, dbPath string) error {
	const op = "backup.RestoreLatest"

	if backupDir == "" || dbPath == "" {
		return invalidf(op, "backup dir and db path are required")
	}

	info, err := Latest(backupDir)
	if err != nil {
		return err
	}

	src := slotDir(backupDir, info.ID)
	if _, err := os.Stat(src); err != nil {
		return ioWrap(op, err)
	}

	if err := os.RemoveAll(dbPath); err != nil {
		return ioWrap(op, err)
	}
	if err := copyTree(src, dbPath); err != nil {
		return ioWrap(op, err)
	}
	return nil
}

// copyTree copies the directory tree at src to dst. Directories are
// created up front so the file copies can run in parallel.
func copyTree(src, dst string) error {
	var files []string

	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(filepath.Join(dst, rel), 0o755)
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(restoreCopyConcurrency)
	for _, rel := range files {
		rel := rel
		g.Go(func() error {
			return copyFile(filepath.Join(src, rel), filepath.Join(dst, rel))
		})
	}
	return g.Wait()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
