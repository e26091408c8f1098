package internal

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const emptyHeadSidebarHTML = `<!DOCTYPE html><html><head></head><body><div id="root"></div></body></html>`

type testEnvironment struct {
	config     Configuration
	profileDir string
	tmpDir     string
}

// setUpTestEnvironment returns a configuration whose directories all
// live in a fresh temporary directory, plus an empty profile
// directory.
func setUpTestEnvironment(t *testing.T) testEnvironment {
	tmpDir := t.TempDir()

	config := DefaultConfiguration()
	config.ThemeSourceDir = filepath.Join(tmpDir, "src")
	config.BuildDir = filepath.Join(tmpDir, "build")
	config.BackupDir = filepath.Join(tmpDir, "backups")

	profileDir := filepath.Join(tmpDir, "home", "Library", "Application Support", "Floorp", "Profiles", "abcd1234.default-release")
	require.NoError(t, os.MkdirAll(profileDir, 0750))
	require.NoError(t, os.MkdirAll(config.ThemeSourceDir, 0750))

	return testEnvironment{
		config:     config,
		profileDir: profileDir,
		tmpDir:     tmpDir,
	}
}

func writeFiles(t *testing.T, baseDir string, files map[string]string) {
	for name, content := range files {
		path := filepath.Join(baseDir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0640))
	}
}

func readFile(t *testing.T, path string) string {
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func readFileIfExists(path string) (string, error) {
	content, err := os.ReadFile(path)
	return string(content), err
}

func writeZip(t *testing.T, path string, files map[string]string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	out, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(out)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(entry, files[name])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, out.Close())
}

// readZip returns the contents of all file entries of a zip archive.
func readZip(t *testing.T, path string) map[string]string {
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	files := map[string]string{}
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		files[f.Name] = string(content)
	}
	return files
}

func findLinks(t *testing.T, markup string) *goquery.Selection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc.Find("link")
}

// snapshotDir maps every file below dir to its content.
func snapshotDir(t *testing.T, dir string) map[string]string {
	files := map[string]string{}
	require.NoError(t, filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(content)
		return nil
	}))
	return files
}

func declineAll(t *testing.T) (Confirmer, *[]string) {
	questions := []string{}
	return ConfirmFunc(func(question string) (bool, error) {
		questions = append(questions, question)
		return false, nil
	}), &questions
}
