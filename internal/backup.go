package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	uerror "t0ast.cc/floorpier/util/error"
	uio "t0ast.cc/floorpier/util/io"
)

const backupTimestampLayout = "20060102150405"

// Backup is a timestamped directory that files are saved into before
// they are overwritten. It is created on first use and never read
// back.
type Backup struct {
	Dir string
}

func NewBackup(rootDir string, now time.Time) *Backup {
	return &Backup{
		Dir: filepath.Join(rootDir, now.Format(backupTimestampLayout)),
	}
}

// CopyFile copies src into the backup directory, keeping its base
// name, and returns the path of the copy.
func (b *Backup) CopyFile(src string) (string, error) {
	dst := filepath.Join(b.Dir, filepath.Base(src))
	if err := uio.CopyFile(src, dst); err != nil {
		return "", uerror.WithStackTrace(err)
	}
	slog.Info("backed up file", slog.String("src", src), slog.String("backup", dst))
	return dst, nil
}

// CopyDir copies the src directory into the backup directory, keeping
// its base name. The copy must not exist yet.
func (b *Backup) CopyDir(src string) (string, error) {
	stat, err := os.Stat(src)
	if err != nil {
		return "", uerror.WithStackTrace(err)
	}
	if !stat.IsDir() {
		return "", uerror.StackTracef("cannot back up %s: not a directory", src)
	}
	dst := filepath.Join(b.Dir, filepath.Base(src))
	exists, err := uio.DirExists(dst)
	if err != nil {
		return "", uerror.WithStackTrace(err)
	}
	if exists {
		return "", uerror.StackTracef("cannot back up %s: %s already exists", src, dst)
	}
	if err := uio.CopyDir(src, dst); err != nil {
		return "", uerror.WithStackTrace(err)
	}
	slog.Info("backed up directory", slog.String("src", src), slog.String("backup", dst))
	return dst, nil
}

// MoveFile moves src into the subdir of the backup directory and
// returns its new path.
func (b *Backup) MoveFile(src, subdir string) (string, error) {
	dst := filepath.Join(b.Dir, subdir, filepath.Base(src))
	if err := uio.MoveFile(src, dst); err != nil {
		return "", uerror.WithStackTrace(err)
	}
	slog.Info("moved file into backup", slog.String("src", src), slog.String("backup", dst))
	return dst, nil
}
