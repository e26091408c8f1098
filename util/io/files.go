package io

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// FileModeURWGRWO is the bitmask for the Unix permission flags
// `u=rw,g=rw,o=`.
var FileModeURWGRWO os.FileMode = 0660

// FileModeURWXGRWXO is the bitmask for the Unix permission flags
// `u=rwx,g=rwx,o=`.
var FileModeURWXGRWXO os.FileMode = 0770

// SkipFunc decides whether an entry of a directory copy is left out.
// rel is the slash-separated path of the entry relative to the copy
// source. Skipping a directory skips its whole subtree.
type SkipFunc func(rel string, d fs.DirEntry) bool

// DirExists returns if a directory exists at the given path, following symlinks.
func DirExists(name string) (bool, error) {
	stat, err := os.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return stat.IsDir(), nil
}

// FileExists returns if a file exists at the given path, following symlinks.
func FileExists(name string) (bool, error) {
	stat, err := os.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !stat.IsDir(), nil
}

// CopyFile copies the `src` file to `dst`, creating the parent
// directories of `dst` as needed. An existing `dst` is overwritten.
func CopyFile(src, dst string) error {
	fileInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), FileModeURWXGRWXO); err != nil {
		return err
	}
	return copyDirFile(src, dst, fileInfo)
}

// CopyDir copies all files in the `src` directory into `dst`,
// preserving permissions. Existing directories in `dst` are kept and
// existing files are overwritten.
func CopyDir(src, dst string) error {
	return CopyDirFiltered(src, dst, nil)
}

// CopyDirFiltered is CopyDir leaving out every entry for which skip
// returns true. A nil skip copies everything.
func CopyDirFiltered(src, dst string, skip SkipFunc) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel != "." && skip != nil && skip(filepath.ToSlash(rel), d) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		dstPath := filepath.Join(dst, rel)
		fileInfo, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(dstPath, fileInfo.Mode().Perm())
		}
		return copyDirFile(path, dstPath, fileInfo)
	})
}

// MoveFile moves the `src` file to `dst`. It falls back to copying
// and removing when a rename is not possible across file systems.
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), FileModeURWXGRWXO); err != nil {
		return err
	}
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyDirFile(path, dst string, fileInfo fs.FileInfo) error {
	srcFile, err := os.Open(path)
	if err != nil {
		return err
	}
	defer srcFile.Close()
	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fileInfo.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
