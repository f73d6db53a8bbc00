package interfaces

// MarkdownConverter turns Markdown source into HTML. Implementations return
// an error (never a partial document) when the input cannot be converted.
type MarkdownConverter interface {
	Convert(markdown []byte) ([]byte, error)
}

// MarkdownConverterFunc adapts a plain function into a MarkdownConverter.
type MarkdownConverterFunc func(markdown []byte) ([]byte, error)

// Convert calls f(markdown).
func (f MarkdownConverterFunc) Convert(markdown []byte) ([]byte, error) {
	return f(markdown)
}

// ConvertOptions mirrors the parser settings exposed through configuration.
type ConvertOptions struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}
