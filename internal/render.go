package internal

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/flosch/pongo2/v6"

	uerror "t0ast.cc/floorpier/util/error"
	uio "t0ast.cc/floorpier/util/io"
)

func init() {
	// Theme templates are CSS and JavaScript, not HTML.
	pongo2.SetAutoescape(false)
}

// Render fills the build directory from the theme source directory.
// Files ending in the template suffix are rendered without any bound
// variables and written without the suffix, all other files are
// copied as they are.
func Render(config Configuration) error {
	isTemplate := func(name string) bool {
		return strings.HasSuffix(name, config.TemplateSuffix)
	}

	if err := os.MkdirAll(config.BuildDir, uio.FileModeURWXGRWXO); err != nil {
		return uerror.WithStackTrace(err)
	}

	if err := uio.CopyDirFiltered(config.ThemeSourceDir, config.BuildDir, func(rel string, d fs.DirEntry) bool {
		return !d.IsDir() && isTemplate(d.Name())
	}); err != nil {
		return uerror.WithStackTrace(err)
	}

	loader, err := pongo2.NewLocalFileSystemLoader(config.ThemeSourceDir)
	if err != nil {
		return uerror.WithStackTrace(err)
	}
	templates := pongo2.NewSet("theme", loader)

	return filepath.WalkDir(config.ThemeSourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return uerror.WithStackTrace(err)
		}
		if d.IsDir() || !isTemplate(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(config.ThemeSourceDir, path)
		if err != nil {
			return uerror.WithStackTrace(err)
		}
		return renderTemplate(templates, rel, filepath.Join(config.BuildDir, strings.TrimSuffix(rel, config.TemplateSuffix)), d)
	})
}

func renderTemplate(templates *pongo2.TemplateSet, rel, dst string, d fs.DirEntry) error {
	fileInfo, err := d.Info()
	if err != nil {
		return uerror.WithStackTrace(err)
	}

	template, err := templates.FromFile(rel)
	if err != nil {
		return uerror.StackTracef("failed to parse template %s: %w", rel, err)
	}
	rendered, err := template.Execute(pongo2.Context{})
	if err != nil {
		return uerror.StackTracef("failed to render template %s: %w", rel, err)
	}
	// A single trailing newline is dropped, as Jinja does by default.
	rendered = strings.TrimSuffix(rendered, "\n")

	if err := os.MkdirAll(filepath.Dir(dst), uio.FileModeURWXGRWXO); err != nil {
		return uerror.WithStackTrace(err)
	}
	if err := os.WriteFile(dst, []byte(rendered), fileInfo.Mode().Perm()); err != nil {
		return uerror.WithStackTrace(err)
	}
	slog.Debug("rendered template", slog.String("template", rel), slog.String("output", dst))
	return nil
}
