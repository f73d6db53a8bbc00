package themes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the descriptor looked up first in every theme directory.
const ManifestFile = "theme.json"

// infoSuffix names the Drupal descriptor, <machine name>.info.yml, used when
// a directory has no theme.json.
const infoSuffix = ".info.yml"

// infoVersionFallback is recorded for info files that omit a version, as
// Drupal contrib themes checked out from git do.
const infoVersionFallback = "dev"

var errNoManifest = errors.New("themes: no manifest")

// Manifest is the theme.json document.
type Manifest struct {
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Version     string         `json:"version"`
	Author      *string        `json:"author,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// infoFile is the subset of a Drupal .info.yml the registry cares about.
type infoFile struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Description string   `yaml:"description"`
	Version     string   `yaml:"version"`
	Package     string   `yaml:"package"`
	BaseTheme   any      `yaml:"base theme"`
	Core        string   `yaml:"core_version_requirement"`
	Libraries   []string `yaml:"libraries"`
}

func LoadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("themes: open manifest: %w", err)
	}
	defer file.Close()
	return ParseManifest(file)
}

func ParseManifest(r io.Reader) (*Manifest, error) {
	var manifest Manifest
	if err := json.NewDecoder(r).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("themes: parse manifest: %w", err)
	}
	return &manifest, nil
}

// ParseInfoFile converts a Drupal info file into a Manifest. The machine
// name, taken from the file name, becomes the theme name and the human
// readable label moves to metadata.
func ParseInfoFile(r io.Reader, machineName string) (*Manifest, error) {
	var info infoFile
	if err := yaml.NewDecoder(r).Decode(&info); err != nil {
		return nil, fmt.Errorf("themes: parse info file: %w", err)
	}
	if info.Type != "" && info.Type != "theme" {
		return nil, fmt.Errorf("themes: info file declares type %q", info.Type)
	}

	manifest := &Manifest{
		Name:     machineName,
		Version:  strings.TrimSpace(info.Version),
		Metadata: map[string]any{"format": "info.yml"},
	}
	if manifest.Version == "" {
		manifest.Version = infoVersionFallback
	}
	if desc := strings.TrimSpace(info.Description); desc != "" {
		manifest.Description = &desc
	}
	if info.Name != "" {
		manifest.Metadata["label"] = info.Name
	}
	if info.Package != "" {
		manifest.Metadata["package"] = info.Package
	}
	// "base theme: false" opts out of inheritance; only names are kept.
	if base, ok := info.BaseTheme.(string); ok && base != "" {
		manifest.Metadata["base_theme"] = base
	}
	if info.Core != "" {
		manifest.Metadata["core_version_requirement"] = info.Core
	}
	if len(info.Libraries) > 0 {
		manifest.Metadata["libraries"] = info.Libraries
	}
	return manifest, nil
}

// HasManifest reports whether dir carries a theme.json or info file.
func HasManifest(dir string) bool {
	_, _, err := locateManifest(dir)
	return err == nil
}

// LoadThemeDirectory reads the descriptor in dir and returns the
// registration payload for the theme installed there.
func LoadThemeDirectory(dir string) (RegisterThemeInput, error) {
	path, isInfo, err := locateManifest(dir)
	if err != nil {
		return RegisterThemeInput{}, fmt.Errorf("%w in %s", err, dir)
	}
	if !isInfo {
		manifest, err := LoadManifest(path)
		if err != nil {
			return RegisterThemeInput{}, err
		}
		return ManifestToThemeInput(dir, manifest)
	}

	file, err := os.Open(path)
	if err != nil {
		return RegisterThemeInput{}, fmt.Errorf("themes: open info file: %w", err)
	}
	defer file.Close()

	manifest, err := ParseInfoFile(file, strings.TrimSuffix(filepath.Base(path), infoSuffix))
	if err != nil {
		return RegisterThemeInput{}, err
	}
	return ManifestToThemeInput(dir, manifest)
}

func ManifestToThemeInput(themePath string, manifest *Manifest) (RegisterThemeInput, error) {
	switch {
	case manifest == nil:
		return RegisterThemeInput{}, fmt.Errorf("themes: manifest required")
	case manifest.Name == "":
		return RegisterThemeInput{}, fmt.Errorf("themes: manifest missing name")
	case manifest.Version == "":
		return RegisterThemeInput{}, fmt.Errorf("themes: manifest missing version")
	}

	return RegisterThemeInput{
		Name:        manifest.Name,
		Description: manifest.Description,
		Version:     manifest.Version,
		Author:      manifest.Author,
		ThemePath:   filepath.Clean(themePath),
		Metadata:    manifest.Metadata,
	}, nil
}

// locateManifest prefers theme.json, then <dir name>.info.yml, then any
// single *.info.yml in dir.
func locateManifest(dir string) (string, bool, error) {
	candidate := filepath.Join(dir, ManifestFile)
	if fileExists(candidate) {
		return candidate, false, nil
	}
	candidate = filepath.Join(dir, filepath.Base(filepath.Clean(dir))+infoSuffix)
	if fileExists(candidate) {
		return candidate, true, nil
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*"+infoSuffix))
	if len(matches) == 1 {
		return matches[0], true, nil
	}
	return "", false, errNoManifest
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
