package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	uerror "t0ast.cc/floorpier/util/error"
	uio "t0ast.cc/floorpier/util/io"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrProfileNotFound     = errors.New("no profile directory found")
)

// ProfileBaseDir returns the directory Floorp keeps its profiles in
// on the given platform.
func ProfileBaseDir(goos, home string) (string, error) {
	switch goos {
	// TODO: Confirm the Linux profile location; Floorp builds for Linux
	// may use ~/.floorp like Firefox uses ~/.mozilla/firefox.
	case "darwin", "linux":
		return filepath.Join(home, "Library", "Application Support", "Floorp", "Profiles"), nil
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "Floorp", "Profiles"), nil
	default:
		return "", uerror.StackTracef("%w: the installer does not support %q", ErrUnsupportedPlatform, goos)
	}
}

// LocateProfile returns the first directory below the profile base
// directory whose name matches the search pattern. Directories are
// visited in lexical order.
func LocateProfile(goos, home string, search ProfileSearch) (string, error) {
	baseDir := search.BaseDir
	if baseDir == "" {
		var err error
		if baseDir, err = ProfileBaseDir(goos, home); err != nil {
			return "", err
		}
	}

	exists, err := uio.DirExists(baseDir)
	if err != nil {
		return "", uerror.WithStackTrace(err)
	}
	if !exists {
		return "", uerror.StackTracef("%w: %s does not exist", ErrProfileNotFound, baseDir)
	}

	var profileDir string
	err = filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == baseDir {
			return nil
		}
		matched, err := filepath.Match(search.Pattern, d.Name())
		if err != nil {
			return err
		}
		if matched {
			profileDir = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", uerror.WithStackTrace(err)
	}
	if profileDir == "" {
		return "", uerror.WithStackTrace(fmt.Errorf("%w: nothing matches %q in %s", ErrProfileNotFound, search.Pattern, baseDir))
	}
	return profileDir, nil
}
