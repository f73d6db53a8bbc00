package interfaces

// Translator resolves a message key for a locale. Implementations fall back
// to the key itself when no translation exists.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}
