package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	uerror "t0ast.cc/floorpier/util/error"
	uio "t0ast.cc/floorpier/util/io"
)

// Patcher injects the custom theme into the packaged extension of a
// profile.
//
// The extension offers no way to install styles without user input,
// so its archive is modified directly.
type Patcher struct {
	Config    Configuration
	Confirmer Confirmer
	Archives  ArchiveCodec
	Markup    MarkupEditor
	// Backup receives the original archive before it is overwritten,
	// if set.
	Backup *Backup
}

func NewPatcher(config Configuration, confirmer Confirmer, backup *Backup) *Patcher {
	return &Patcher{
		Config:    config,
		Confirmer: confirmer,
		Archives:  ZipCodec{},
		Markup:    HTMLEditor{},
		Backup:    backup,
	}
}

// ExtensionPath returns where the packaged extension lives inside
// profileDir.
func (p *Patcher) ExtensionPath(profileDir string) string {
	return filepath.Join(profileDir, "extensions", p.Config.ExtensionFileName())
}

// PatchExtension runs the whole unpack, patch and repack cycle and
// only then replaces the archive in profileDir.
func (p *Patcher) PatchExtension(profileDir string) error {
	archivePath := p.ExtensionPath(profileDir)

	ok, err := p.Confirmer.Confirm(fmt.Sprintf("You are about to modify %s with a custom style, continue? (y/n): ", p.Config.Extension.Name))
	if err != nil {
		return uerror.WithStackTrace(err)
	}
	if !ok {
		slog.Debug("extension patch declined", slog.String("extension", archivePath))
		return nil
	}

	unpackedDir, err := p.unpack(archivePath)
	if err != nil {
		return err
	}
	if err := p.patchThemes(unpackedDir); err != nil {
		return err
	}
	repackedPath, err := p.repack(unpackedDir)
	if err != nil {
		return err
	}

	if p.Backup != nil {
		if _, err := p.Backup.MoveFile(archivePath, "extensions"); err != nil {
			return err
		}
	}

	if err := uio.CopyFile(repackedPath, archivePath); err != nil {
		return uerror.WithStackTrace(err)
	}
	slog.Info("installed theme and styles into the extension",
		slog.String("extension", p.Config.Extension.Name),
		slog.String("archive", archivePath))
	return nil
}

func (p *Patcher) unpack(archivePath string) (string, error) {
	buildDir := p.Config.ExtensionsBuildDir()
	archiveCopy := filepath.Join(buildDir, p.Config.ExtensionFileName())
	if err := uio.CopyFile(archivePath, archiveCopy); err != nil {
		return "", uerror.WithStackTrace(err)
	}

	unpackedDir := filepath.Join(buildDir, p.Config.Extension.ID)
	if err := os.RemoveAll(unpackedDir); err != nil {
		return "", uerror.WithStackTrace(err)
	}
	if err := p.Archives.Unpack(archiveCopy, unpackedDir); err != nil {
		return "", uerror.WithStackTrace(err)
	}
	slog.Debug("unpacked extension", slog.String("archive", archiveCopy), slog.String("dir", unpackedDir))
	return unpackedDir, nil
}

func (p *Patcher) patchThemes(unpackedDir string) error {
	themeDir := filepath.Join(unpackedDir, filepath.FromSlash(p.Config.Extension.ThemeDir))
	if err := os.MkdirAll(themeDir, uio.FileModeURWXGRWXO); err != nil {
		return uerror.WithStackTrace(err)
	}
	if err := uio.CopyDir(p.Config.ExtensionThemeBuildDir(), themeDir); err != nil {
		return uerror.WithStackTrace(err)
	}

	// TODO: Derive the components from the stylesheets present in the
	// theme build directory instead of configuring them.
	for _, component := range p.Config.Extension.Components {
		if err := p.patchComponent(unpackedDir, component); err != nil {
			return err
		}
	}
	return nil
}

func (p *Patcher) patchComponent(unpackedDir, component string) error {
	htmlPath := filepath.Join(unpackedDir, component, component+".html")
	doc, err := p.Markup.LoadDocument(htmlPath)
	if err != nil {
		return uerror.WithStackTrace(err)
	}

	link := StylesheetLink{
		Href: path.Join("..", p.Config.Extension.ThemeDir, component+".css"),
	}
	if p.Config.Policy.IdempotentPatch {
		link.ID = p.Config.Extension.TagID
	}
	if err := doc.UpsertLink(link); err != nil {
		return uerror.StackTracef("patch %s: %w", htmlPath, err)
	}
	if err := doc.Save(htmlPath); err != nil {
		return uerror.WithStackTrace(err)
	}
	slog.Debug("linked custom stylesheet", slog.String("component", component), slog.String("href", link.Href))
	return nil
}

func (p *Patcher) repack(unpackedDir string) (string, error) {
	repackedPath := filepath.Join(p.Config.ExtensionsBuildDir(), p.Config.ExtensionFileName()+".zip")
	if err := p.Archives.Pack(unpackedDir, repackedPath); err != nil {
		return "", uerror.WithStackTrace(err)
	}
	return repackedPath, nil
}
