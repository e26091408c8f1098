package internal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	uerror "t0ast.cc/floorpier/util/error"
)

var ErrInvalidConfiguration = errors.New("invalid configuration")

// Configuration holds every path and identifier the installer works
// with. Relative paths are relative to the working directory unless
// the configuration was read from a file.
type Configuration struct {
	ThemeSourceDir string                 `yaml:"themeSourceDir"`
	BuildDir       string                 `yaml:"buildDir"`
	BackupDir      string                 `yaml:"backupDir"`
	TemplateSuffix string                 `yaml:"templateSuffix"`
	Profiles       ProfileSearch          `yaml:"profiles"`
	Extension      ExtensionConfiguration `yaml:"extension"`
	Policy         Policy                 `yaml:"policy"`
}

// ProfileSearch controls where LocateProfile looks for the profile.
type ProfileSearch struct {
	// BaseDir replaces the platform default base directory.
	BaseDir string `yaml:"baseDir"`
	Pattern string `yaml:"pattern"`
}

type ExtensionConfiguration struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
	// ThemeDir is the slash-separated location of the custom theme
	// inside the unpacked extension.
	ThemeDir string `yaml:"themeDir"`
	// ThemeBuildDir is the build subdirectory holding the rendered
	// theme for the extension.
	ThemeBuildDir string   `yaml:"themeBuildDir"`
	TagID         string   `yaml:"tagID"`
	Components    []string `yaml:"components"`
}

// Policy selects between the installer behaviours that differ across
// setups.
type Policy struct {
	KeepBuildArtifacts    bool `yaml:"keepBuildArtifacts"`
	BackupBeforeOverwrite bool `yaml:"backupBeforeOverwrite"`
	IdempotentPatch       bool `yaml:"idempotentPatch"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		ThemeSourceDir: "src",
		BuildDir:       "build",
		BackupDir:      "backups",
		TemplateSuffix: ".jinja",
		Profiles: ProfileSearch{
			Pattern: "*.default-release",
		},
		Extension: ExtensionConfiguration{
			Name:          "Sidebery",
			ID:            "3c078156-979c-498b-8990-85f7987dd929",
			ThemeDir:      "themes/floorpier",
			ThemeBuildDir: "sidebery",
			TagID:         "floorpier_theme_link",
			Components:    []string{"sidebar"},
		},
		Policy: Policy{
			BackupBeforeOverwrite: true,
			IdempotentPatch:       true,
		},
	}
}

// ReadConfiguration decodes a YAML configuration file over the
// defaults. Relative paths in the file are resolved against the
// directory of the file.
func ReadConfiguration(configFile string) (Configuration, error) {
	configBytes, err := os.ReadFile(configFile)
	if err != nil {
		return Configuration{}, uerror.WithStackTrace(err)
	}
	config := DefaultConfiguration()
	decoder := yaml.NewDecoder(bytes.NewReader(configBytes))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Configuration{}, uerror.StackTracef("%w: %s: %v", ErrInvalidConfiguration, configFile, err)
	}

	configDir := filepath.Dir(configFile)
	for _, path := range []*string{&config.ThemeSourceDir, &config.BuildDir, &config.BackupDir, &config.Profiles.BaseDir} {
		if *path != "" && !filepath.IsAbs(*path) {
			*path = filepath.Join(configDir, *path)
		}
	}
	return config, nil
}

func (c Configuration) Validate() error {
	if _, err := uuid.Parse(c.Extension.ID); err != nil {
		return uerror.StackTracef("%w: extension id %q: %v", ErrInvalidConfiguration, c.Extension.ID, err)
	}
	if c.TemplateSuffix == "" {
		return uerror.StackTracef("%w: empty template suffix", ErrInvalidConfiguration)
	}
	if c.Profiles.Pattern == "" {
		return uerror.StackTracef("%w: empty profile pattern", ErrInvalidConfiguration)
	}
	if _, err := filepath.Match(c.Profiles.Pattern, ""); err != nil {
		return uerror.StackTracef("%w: profile pattern %q: %v", ErrInvalidConfiguration, c.Profiles.Pattern, err)
	}
	for _, dir := range []string{c.ThemeSourceDir, c.BuildDir, c.BackupDir, c.Extension.ThemeBuildDir, c.Extension.ThemeDir} {
		if dir == "" {
			return uerror.StackTracef("%w: empty directory setting", ErrInvalidConfiguration)
		}
	}
	for _, component := range c.Extension.Components {
		if component == "" || component == "." || component == ".." || strings.ContainsAny(component, `/\`) {
			return uerror.StackTracef("%w: component name %q", ErrInvalidConfiguration, component)
		}
	}
	return nil
}

// ExtensionFileName is the file name of the packaged extension inside
// the profile's extensions directory.
func (c Configuration) ExtensionFileName() string {
	return fmt.Sprintf("{%s}.xpi", c.Extension.ID)
}

func (c Configuration) ProfileBuildDir() string {
	return filepath.Join(c.BuildDir, "profile")
}

func (c Configuration) ExtensionsBuildDir() string {
	return filepath.Join(c.BuildDir, "extensions")
}

func (c Configuration) ExtensionThemeBuildDir() string {
	return filepath.Join(c.BuildDir, c.Extension.ThemeBuildDir)
}
