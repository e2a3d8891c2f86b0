// Package i18n holds the user-facing message tables.
package i18n

import (
	"embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/whenToSleep/race-info-bot/internal/models"
)

//go:embed locales/*.yaml
var localeFS embed.FS

type Catalog struct {
	messages map[models.Language]map[string]string
}

// Load reads the embedded ru/en/uk tables. Every supported language must
// have a table.
func Load() (*Catalog, error) {
	c := &Catalog{messages: map[models.Language]map[string]string{}}
	for _, lang := range models.Languages {
		raw, err := localeFS.ReadFile("locales/" + string(lang) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", lang, err)
		}
		table := map[string]string{}
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("locale %s: %w", lang, err)
		}
		c.messages[lang] = table
	}
	return c, nil
}

// MustLoad is Load for program start-up and tests.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Text looks up key for lang, falling back to the default language and then
// to the key itself. args are placeholder/value pairs: Text(l, "found", "team", "Red").
func (c *Catalog) Text(lang models.Language, key string, args ...string) string {
	msg, ok := c.messages[lang][key]
	if !ok {
		msg, ok = c.messages[models.DefaultLanguage][key]
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, "{"+args[i]+"}", args[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var matcher = language.NewMatcher([]language.Tag{
	language.Russian,
	language.English,
	language.Ukrainian,
})

// Match picks the supported language closest to a client language code such
// as Telegram's "en-US". Unknown or empty codes give the default language.
func Match(code string) models.Language {
	if code == "" {
		return models.DefaultLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return models.DefaultLanguage
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return models.DefaultLanguage
	}
	return models.Languages[idx]
}
