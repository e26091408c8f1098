package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"

	uerror "t0ast.cc/floorpier/util/error"
	uio "t0ast.cc/floorpier/util/io"
)

// InstallProfile copies the rendered profile overlay into profileDir
// once the operator confirms. A non-nil backup receives the current
// user.js and chrome directory first.
func InstallProfile(config Configuration, profileDir string, confirmer Confirmer, backup *Backup) error {
	src := config.ProfileBuildDir()

	ok, err := confirmer.Confirm(fmt.Sprintf("You are about to copy the contents of '%s' into '%s', continue? (y/n): ", src, profileDir))
	if err != nil {
		return uerror.WithStackTrace(err)
	}
	if !ok {
		slog.Debug("profile installation declined", slog.String("profile", profileDir))
		return nil
	}

	if backup != nil {
		if _, err := backup.CopyFile(filepath.Join(profileDir, "user.js")); err != nil {
			return err
		}
		if _, err := backup.CopyDir(filepath.Join(profileDir, "chrome")); err != nil {
			return err
		}
	}

	if err := uio.CopyDir(src, profileDir); err != nil {
		return uerror.WithStackTrace(err)
	}
	slog.Info("installed the theme and options into the profile directory", slog.String("profile", profileDir))
	return nil
}
