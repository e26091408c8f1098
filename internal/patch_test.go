package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var originalExtensionFiles = map[string]string{
	"manifest.json":        `{"manifest_version": 2, "name": "Sidebery"}`,
	"sidebar/sidebar.html": emptyHeadSidebarHTML,
	"sidebar/sidebar.js":   "console.log('sidebar')",
}

func setUpPatchEnvironment(t *testing.T) (testEnvironment, string) {
	env := setUpTestEnvironment(t)
	writeFiles(t, env.config.ExtensionThemeBuildDir(), map[string]string{
		"sidebar.css": ".tab { color: red; }",
	})
	archivePath := filepath.Join(env.profileDir, "extensions", env.config.ExtensionFileName())
	writeZip(t, archivePath, originalExtensionFiles)
	return env, archivePath
}

func assertPatchedArchive(t *testing.T, archivePath string, expectedLinks int) map[string]string {
	files := readZip(t, archivePath)
	assert.Equal(t, originalExtensionFiles["manifest.json"], files["manifest.json"])
	assert.Equal(t, originalExtensionFiles["sidebar/sidebar.js"], files["sidebar/sidebar.js"])
	assert.Equal(t, ".tab { color: red; }", files["themes/floorpier/sidebar.css"])

	links := findLinks(t, files["sidebar/sidebar.html"])
	require.Equal(t, expectedLinks, links.Length())
	links.Each(func(_ int, link *goquery.Selection) {
		assert.Equal(t, "../themes/floorpier/sidebar.css", link.AttrOr("href", ""))
		assert.True(t, strings.HasSuffix(link.AttrOr("href", ""), "/sidebar.css"))
		assert.Equal(t, "stylesheet", link.AttrOr("rel", ""))
		assert.Equal(t, "text/css", link.AttrOr("type", ""))
	})
	return files
}

func TestPatchExtension(t *testing.T) {
	env, archivePath := setUpPatchEnvironment(t)
	originalArchive := readFile(t, archivePath)
	backup := NewBackup(env.config.BackupDir, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))

	var question string
	patcher := NewPatcher(env.config, ConfirmFunc(func(q string) (bool, error) {
		question = q
		return true, nil
	}), backup)
	assert.Equal(t, archivePath, patcher.ExtensionPath(env.profileDir))

	require.NoError(t, patcher.PatchExtension(env.profileDir))

	assert.Equal(t, "You are about to modify Sidebery with a custom style, continue? (y/n): ", question)
	files := assertPatchedArchive(t, archivePath, 1)
	assert.Equal(t, "floorpier_theme_link", findLinks(t, files["sidebar/sidebar.html"]).AttrOr("id", ""))

	backedUp := filepath.Join(env.config.BackupDir, "20240506070809", "extensions", env.config.ExtensionFileName())
	assert.Equal(t, originalArchive, readFile(t, backedUp))

	buildDir := env.config.ExtensionsBuildDir()
	assert.FileExists(t, filepath.Join(buildDir, env.config.ExtensionFileName()))
	assert.FileExists(t, filepath.Join(buildDir, env.config.ExtensionFileName()+".zip"))
	assert.DirExists(t, filepath.Join(buildDir, env.config.Extension.ID, "themes", "floorpier"))
}

func TestPatchExtensionTwiceIsIdempotent(t *testing.T) {
	env, archivePath := setUpPatchEnvironment(t)

	first := NewPatcher(env.config, AlwaysConfirm, NewBackup(env.config.BackupDir, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)))
	require.NoError(t, first.PatchExtension(env.profileDir))
	second := NewPatcher(env.config, AlwaysConfirm, NewBackup(env.config.BackupDir, time.Date(2024, 5, 6, 7, 8, 10, 0, time.UTC)))
	require.NoError(t, second.PatchExtension(env.profileDir))

	assertPatchedArchive(t, archivePath, 1)
}

func TestPatchExtensionWithoutMarkerAppends(t *testing.T) {
	env, archivePath := setUpPatchEnvironment(t)
	env.config.Policy.IdempotentPatch = false

	for i := 0; i < 2; i++ {
		require.NoError(t, NewPatcher(env.config, AlwaysConfirm, nil).PatchExtension(env.profileDir))
	}

	// Every run adds another link.
	files := assertPatchedArchive(t, archivePath, 2)
	_, hasID := findLinks(t, files["sidebar/sidebar.html"]).Attr("id")
	assert.False(t, hasID)
	assert.NoDirExists(t, env.config.BackupDir)
}

func TestPatchExtensionDeclined(t *testing.T) {
	env, archivePath := setUpPatchEnvironment(t)
	before := snapshotDir(t, env.profileDir)
	confirmer, questions := declineAll(t)

	require.NoError(t, NewPatcher(env.config, confirmer, NewBackup(env.config.BackupDir, time.Now())).PatchExtension(env.profileDir))

	assert.Len(t, *questions, 1)
	assert.Equal(t, before, snapshotDir(t, env.profileDir))
	assert.Equal(t, originalExtensionFiles, readZip(t, archivePath))
	assert.NoDirExists(t, env.config.ExtensionsBuildDir())
	assert.NoDirExists(t, env.config.BackupDir)
}

func TestPatchExtensionNotInstalled(t *testing.T) {
	env, archivePath := setUpPatchEnvironment(t)
	require.NoError(t, os.Remove(archivePath))

	err := NewPatcher(env.config, AlwaysConfirm, nil).PatchExtension(env.profileDir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type fakeArchiveCodec struct {
	calls   []string
	packErr error
}

func (c *fakeArchiveCodec) Unpack(archivePath, destDir string) error {
	c.calls = append(c.calls, "unpack "+filepath.Base(archivePath))
	return os.MkdirAll(destDir, 0750)
}

func (c *fakeArchiveCodec) Pack(srcDir, archivePath string) error {
	c.calls = append(c.calls, "pack "+filepath.Base(archivePath))
	if c.packErr != nil {
		return c.packErr
	}
	return os.WriteFile(archivePath, []byte("repacked"), 0640)
}

type fakeMarkupEditor struct {
	upserts map[string][]StylesheetLink
	saved   []string
}

type fakeMarkupDocument struct {
	editor *fakeMarkupEditor
	path   string
}

func (e *fakeMarkupEditor) LoadDocument(path string) (MarkupDocument, error) {
	return &fakeMarkupDocument{editor: e, path: path}, nil
}

func (d *fakeMarkupDocument) UpsertLink(link StylesheetLink) error {
	d.editor.upserts[d.path] = append(d.editor.upserts[d.path], link)
	return nil
}

func (d *fakeMarkupDocument) Save(path string) error {
	d.editor.saved = append(d.editor.saved, path)
	return nil
}

func TestPatchExtensionComponents(t *testing.T) {
	env, archivePath := setUpPatchEnvironment(t)
	env.config.Extension.Components = []string{"sidebar", "popup"}
	archives := &fakeArchiveCodec{}
	markup := &fakeMarkupEditor{upserts: map[string][]StylesheetLink{}}

	patcher := NewPatcher(env.config, AlwaysConfirm, nil)
	patcher.Archives = archives
	patcher.Markup = markup
	require.NoError(t, patcher.PatchExtension(env.profileDir))

	fileName := env.config.ExtensionFileName()
	assert.Equal(t, []string{"unpack " + fileName, "pack " + fileName + ".zip"}, archives.calls)
	assert.Equal(t, "repacked", readFile(t, archivePath))

	unpackedDir := filepath.Join(env.config.ExtensionsBuildDir(), env.config.Extension.ID)
	sidebarHTML := filepath.Join(unpackedDir, "sidebar", "sidebar.html")
	popupHTML := filepath.Join(unpackedDir, "popup", "popup.html")
	assert.Equal(t, map[string][]StylesheetLink{
		sidebarHTML: {{Href: "../themes/floorpier/sidebar.css", ID: "floorpier_theme_link"}},
		popupHTML:   {{Href: "../themes/floorpier/popup.css", ID: "floorpier_theme_link"}},
	}, markup.upserts)
	assert.Equal(t, []string{sidebarHTML, popupHTML}, markup.saved)
}

func TestPatchExtensionPackFailureKeepsOriginal(t *testing.T) {
	env, archivePath := setUpPatchEnvironment(t)
	archives := &fakeArchiveCodec{packErr: errors.New("disk full")}

	patcher := NewPatcher(env.config, AlwaysConfirm, NewBackup(env.config.BackupDir, time.Now()))
	patcher.Archives = archives
	patcher.Markup = &fakeMarkupEditor{upserts: map[string][]StylesheetLink{}}

	assert.Error(t, patcher.PatchExtension(env.profileDir))
	assert.Equal(t, originalExtensionFiles, readZip(t, archivePath))
	assert.NoDirExists(t, env.config.BackupDir)
}
