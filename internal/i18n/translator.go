package i18n

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tothom/drupier-demo/pkg/interfaces"
)

// Translator resolves message keys against in-memory catalogues. Lookups
// walk the requested locale, its language parent, then the default locale;
// a key without any translation is returned as-is.
type Translator struct {
	mu            sync.RWMutex
	defaultLocale string
	locales       []string
	catalog       map[string]map[string]string
}

var _ interfaces.Translator = (*Translator)(nil)

// NewTranslator builds a translator from cfg and the supplied catalogues.
func NewTranslator(cfg Config, translations map[string]map[string]string) (*Translator, error) {
	defaultLocale := normalizeLocale(cfg.DefaultLocale)
	if defaultLocale == "" {
		return nil, fmt.Errorf("i18n: default locale is required")
	}

	catalog := make(map[string]map[string]string, len(translations))
	for locale, messages := range translations {
		key := normalizeLocale(locale)
		if key == "" {
			continue
		}
		dst := catalog[key]
		if dst == nil {
			dst = make(map[string]string, len(messages))
			catalog[key] = dst
		}
		for k, v := range messages {
			dst[k] = v
		}
	}

	locales := make([]string, 0, len(cfg.Locales))
	for _, locale := range cfg.Locales {
		if l := normalizeLocale(locale); l != "" {
			locales = append(locales, l)
		}
	}

	return &Translator{
		defaultLocale: defaultLocale,
		locales:       locales,
		catalog:       catalog,
	}, nil
}

// NewDefaultTranslator loads the embedded catalogues. cfg overrides the
// embedded locale settings where set.
func NewDefaultTranslator(cfg Config) (*Translator, error) {
	fx, err := DefaultFixture()
	if err != nil {
		return nil, err
	}
	return NewTranslator(cfg.withDefaults(fx.Config), fx.Translations)
}

// Translate implements interfaces.Translator. Extra args are applied with
// fmt.Sprintf when present.
func (t *Translator) Translate(locale string, key string, args ...any) (string, error) {
	if t == nil {
		return key, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, candidate := range t.candidates(locale) {
		messages, ok := t.catalog[candidate]
		if !ok {
			continue
		}
		if msg, ok := messages[key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(msg, args...), nil
			}
			return msg, nil
		}
	}
	return key, nil
}

// Merge adds or replaces messages for locale.
func (t *Translator) Merge(locale string, messages map[string]string) {
	key := normalizeLocale(locale)
	if key == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	dst := t.catalog[key]
	if dst == nil {
		dst = make(map[string]string, len(messages))
		t.catalog[key] = dst
	}
	for k, v := range messages {
		dst[k] = v
	}
}

// DefaultLocale returns the locale used when a lookup falls through.
func (t *Translator) DefaultLocale() string {
	if t == nil {
		return ""
	}
	return t.defaultLocale
}

// Locales returns the configured locales in declaration order.
func (t *Translator) Locales() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.locales...)
}

func (t *Translator) candidates(locale string) []string {
	out := make([]string, 0, 3)
	add := func(l string) {
		if l == "" {
			return
		}
		for _, existing := range out {
			if existing == l {
				return
			}
		}
		out = append(out, l)
	}

	requested := normalizeLocale(locale)
	add(requested)
	if idx := strings.IndexByte(requested, '-'); idx > 0 {
		add(requested[:idx])
	}
	add(t.defaultLocale)
	return out
}

// Resolve maps requested onto one of offered: the exact locale, then its
// language parent, else fallback. Matching ignores case and treats "_" as "-".
func Resolve(requested string, offered []string, fallback string) string {
	want := normalizeLocale(requested)
	if want == "" {
		return fallback
	}
	parent := ""
	if idx := strings.IndexByte(want, '-'); idx > 0 {
		parent = want[:idx]
	}
	match := ""
	for _, locale := range offered {
		switch normalizeLocale(locale) {
		case want:
			return normalizeLocale(locale)
		case parent:
			match = parent
		}
	}
	if match != "" {
		return match
	}
	return fallback
}

func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(locale)), "_", "-")
}

// NoOpTranslator returns every key unchanged.
type NoOpTranslator struct{}

func (NoOpTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	return key, nil
}
