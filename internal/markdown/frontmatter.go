package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// Meta is the optional YAML/TOML header a README may carry.
type Meta struct {
	Title  string         `yaml:"title" toml:"title"`
	Theme  string         `yaml:"theme" toml:"theme"`
	Tags   []string       `yaml:"tags" toml:"tags"`
	Custom map[string]any `yaml:",inline" toml:"-"`
}

// ParseFrontMatter splits source into its metadata header and body. Sources
// without a header return empty metadata and the full source.
func ParseFrontMatter(source []byte) (Meta, []byte, error) {
	var meta Meta
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta.Custom == nil {
		meta.Custom = map[string]any{}
	}
	return meta, body, nil
}

// StripFrontMatter returns the body of source without its header. A
// malformed header leaves the source untouched so the renderer still shows
// something.
func StripFrontMatter(source []byte) []byte {
	_, body, err := ParseFrontMatter(source)
	if err != nil {
		return source
	}
	return body
}
