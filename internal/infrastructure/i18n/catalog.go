// Package i18n loads localized bot messages and renders them with x/text
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every other catalog is checked against
const BaseLocale = "en"

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

//go:embed locales/*.yaml
var embeddedFS embed.FS

// Bundle holds the messages of all loaded locales
type Bundle struct {
	builder  *catalog.Builder
	messages map[string]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
}

// LoadEmbedded loads the catalogs shipped with the binary
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedFS)
}

// LoadFromFS loads every locales/*.yaml file of fsys
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	files := make(map[string]catalogFile, len(paths))
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		locale := strings.TrimSpace(file.Locale)
		if locale == "" {
			return nil, fmt.Errorf("catalog %s: locale is required", path)
		}
		if _, dup := files[locale]; dup {
			return nil, fmt.Errorf("catalog %s: locale %q defined twice", path, locale)
		}
		files[locale] = file
	}

	base, ok := files[BaseLocale]
	if !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}

	baseTag := language.MustParse(BaseLocale)
	b := &Bundle{
		builder:  catalog.NewBuilder(catalog.Fallback(baseTag)),
		messages: make(map[string]map[string]string, len(files)),
		tags:     []language.Tag{baseTag},
	}

	locales := make([]string, 0, len(files))
	for locale := range files {
		locales = append(locales, locale)
	}
	sort.Strings(locales)

	for _, locale := range locales {
		file := files[locale]
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		for key := range base.Messages {
			if _, ok := file.Messages[key]; !ok {
				return nil, fmt.Errorf("catalog %s: missing key %q", locale, key)
			}
		}
		for key, value := range file.Messages {
			if err := b.builder.SetString(tag, key, value); err != nil {
				return nil, fmt.Errorf("catalog %s: key %q: %w", locale, key, err)
			}
		}
		b.messages[locale] = file.Messages
		if locale != BaseLocale {
			b.tags = append(b.tags, tag)
		}
	}

	// the first tag is the matcher's default
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Has reports whether locale defines key
func (b *Bundle) Has(locale, key string) bool {
	_, ok := b.messages[locale][key]
	return ok
}

// Locales returns the loaded locale identifiers
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.messages))
	for locale := range b.messages {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Localizer returns a Localizer for the closest supported match of lang.
// Unknown or malformed languages fall back to BaseLocale.
func (b *Bundle) Localizer(lang string) *Localizer {
	tag := b.tags[0]
	if requested, err := language.Parse(strings.ToLower(strings.TrimSpace(lang))); err == nil {
		_, idx, confidence := b.matcher.Match(requested)
		if confidence != language.No {
			tag = b.tags[idx]
		}
	}
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(b.builder)),
	}
}

// Localizer renders messages of one language
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// Text renders the message stored under key with args
func (l *Localizer) Text(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Language returns the resolved language tag
func (l *Localizer) Language() string {
	return l.tag.String()
}
