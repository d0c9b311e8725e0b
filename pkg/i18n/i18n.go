// Package i18n holds the display strings of the clustering engine.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// ObjectsInArea is the key of the cluster label suffix.
const ObjectsInArea = "objects_in_area"

var supported = []language.Tag{language.English, language.Russian}

var messages = map[language.Tag]map[string]string{
	language.English: {
		ObjectsInArea: "objects in area",
	},
	language.Russian: {
		ObjectsInArea: "объектов в области",
	},
}

// Catalog looks up strings for a single locale. Unknown keys are returned as-is.
type Catalog struct {
	tag     language.Tag
	printer *message.Printer
	keys    map[string]bool
}

// New returns a catalog for the supported language closest to locale,
// falling back to English.
func New(locale string) (*Catalog, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("failed to parse locale %q: %w", locale, err)
	}

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	keys := make(map[string]bool)
	for lang, entries := range messages {
		for key, msg := range entries {
			keys[key] = true
			// translations are printed as format strings
			if err := b.SetString(lang, key, strings.ReplaceAll(msg, "%", "%%")); err != nil {
				return nil, fmt.Errorf("failed to register %s/%s: %w", lang, key, err)
			}
		}
	}

	_, idx, _ := language.NewMatcher(supported).Match(tag)
	matched := supported[idx]
	return &Catalog{
		tag:     matched,
		printer: message.NewPrinter(matched, message.Catalog(b)),
		keys:    keys,
	}, nil
}

// Default returns the English catalog.
func Default() *Catalog {
	c, err := New("en")
	if err != nil {
		panic(err)
	}
	return c
}

// Localize returns the translation of key.
func (c *Catalog) Localize(key string) string {
	if !c.keys[key] {
		return key
	}
	return c.printer.Sprintf(key)
}

// Language returns the matched language.
func (c *Catalog) Language() language.Tag { return c.tag }
