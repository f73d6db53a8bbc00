package i18n

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fixture is a translation bundle: optional locale config plus messages
// keyed by locale, then by message key.
type Fixture struct {
	Config       Config                       `json:"config" yaml:"config"`
	Translations map[string]map[string]string `json:"translations" yaml:"translations"`
}

//go:embed translations.json
var defaultFixtureData []byte

// DefaultFixture decodes the translations compiled into the binary.
func DefaultFixture() (*Fixture, error) {
	fx, err := decodeJSONFixture(bytes.NewReader(defaultFixtureData))
	if err != nil {
		return nil, fmt.Errorf("i18n: decode embedded fixture: %w", err)
	}
	return fx, nil
}

// Loader reads an extra fixture from disk. Files ending in .yaml or .yml are
// decoded as YAML, everything else as strict JSON.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: strings.TrimSpace(path)}
}

func (l *Loader) Load(ctx context.Context) (*Fixture, error) {
	if l == nil || l.path == "" {
		return nil, errors.New("i18n: loader path cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("i18n: open fixture %q: %w", l.path, err)
	}
	defer file.Close()

	decode := decodeJSONFixture
	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".yaml", ".yml":
		decode = decodeYAMLFixture
	}
	fx, err := decode(file)
	if err != nil {
		return nil, fmt.Errorf("i18n: decode fixture %q: %w", l.path, err)
	}
	return fx, nil
}

func decodeJSONFixture(r io.Reader) (*Fixture, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var fx Fixture
	if err := decoder.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return fx.normalized(), nil
}

func decodeYAMLFixture(r io.Reader) (*Fixture, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var fx Fixture
	if err := decoder.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return fx.normalized(), nil
}

func (fx *Fixture) normalized() *Fixture {
	if fx.Translations == nil {
		fx.Translations = map[string]map[string]string{}
	}
	return fx
}
