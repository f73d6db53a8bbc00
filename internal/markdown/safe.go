package markdown

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/tothom/drupier-demo/pkg/interfaces"
)

// SafeConvert runs converter and turns a nil converter, a returned error or
// a panic into a conversion error. It never panics itself.
func SafeConvert(converter interfaces.MarkdownConverter, source []byte) (html []byte, err error) {
	if converter == nil {
		return nil, ErrConverterUnavailable
	}
	defer func() {
		if r := recover(); r != nil {
			html = nil
			err = goerrors.New(fmt.Sprintf("markdown: converter panicked: %v", r), goerrors.CategoryInternal).
				WithTextCode(conversionPanicCode)
		}
	}()

	html, err = converter.Convert(source)
	if err != nil {
		if IsConversionError(err) {
			return nil, err
		}
		return nil, ConversionError(engineName(converter), err)
	}
	return html, nil
}

type namedEngine interface {
	Engine() string
}

func engineName(converter interfaces.MarkdownConverter) string {
	if named, ok := converter.(namedEngine); ok {
		return named.Engine()
	}
	return "custom"
}
