package internal

import (
	"log/slog"
	"os"
	"runtime"
	"time"

	uerror "t0ast.cc/floorpier/util/error"
)

// Pipeline renders the theme and installs it into a profile, one step
// after another.
type Pipeline struct {
	Config    Configuration
	Confirmer Confirmer
	// ProfileDir skips the profile search if set.
	ProfileDir string
	// GOOS and HomeDir default to the running system.
	GOOS    string
	HomeDir string
	// Now timestamps the backup directory; defaults to time.Now.
	Now      func() time.Time
	Archives ArchiveCodec
	Markup   MarkupEditor
}

func (p *Pipeline) Run() error {
	if err := PrepareBuild(p.Config); err != nil {
		return err
	}

	profileDir, err := p.profileDir()
	if err != nil {
		return err
	}
	slog.Info("using profile", slog.String("profile", profileDir))

	var backup *Backup
	if p.Config.Policy.BackupBeforeOverwrite {
		now := time.Now
		if p.Now != nil {
			now = p.Now
		}
		backup = NewBackup(p.Config.BackupDir, now())
	}

	if err := InstallProfile(p.Config, profileDir, p.Confirmer, backup); err != nil {
		return err
	}

	patcher := NewPatcher(p.Config, p.Confirmer, backup)
	if p.Archives != nil {
		patcher.Archives = p.Archives
	}
	if p.Markup != nil {
		patcher.Markup = p.Markup
	}
	return patcher.PatchExtension(profileDir)
}

func (p *Pipeline) profileDir() (string, error) {
	if p.ProfileDir != "" {
		return p.ProfileDir, nil
	}
	goos := p.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	home := p.HomeDir
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return "", uerror.WithStackTrace(err)
		}
	}
	return LocateProfile(goos, home, p.Config.Profiles)
}

// PrepareBuild removes the previous build unless the policy keeps it,
// then renders the theme.
func PrepareBuild(config Configuration) error {
	if !config.Policy.KeepBuildArtifacts {
		if err := os.RemoveAll(config.BuildDir); err != nil {
			return uerror.WithStackTrace(err)
		}
	}
	return Render(config)
}
