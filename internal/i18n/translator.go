// Package i18n provides the localized string tables for assistant replies.
// Catalogs are embedded YAML, one flat key/value file per language.
package i18n

import (
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/aurida/helpline/pkg/domain"
)

//go:embed catalogs/lt.yaml
var catalogLT []byte

//go:embed catalogs/en.yaml
var catalogEN []byte

// Translator resolves message keys against the embedded catalogs.
// T never fails: a missing key resolves to the key itself.
type Translator struct {
	catalogs map[domain.Language]map[string]string
	logger   *slog.Logger
}

// New parses the embedded catalogs.
func New(logger *slog.Logger) (*Translator, error) {
	catalogs := make(map[domain.Language]map[string]string, 2)
	for lang, raw := range map[domain.Language][]byte{
		domain.LanguageLT: catalogLT,
		domain.LanguageEN: catalogEN,
	} {
		table := make(map[string]string)
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("failed to parse %s catalog: %w", lang, err)
		}
		catalogs[lang] = table
	}
	return &Translator{catalogs: catalogs, logger: logger}, nil
}

// T returns the localized string for key, formatted with args.
// Unknown languages fall back to Lithuanian; unknown keys fall back to the
// key itself so a gap in the catalog never breaks a conversation.
func (t *Translator) T(lang domain.Language, key string, args ...any) string {
	table, ok := t.catalogs[lang]
	if !ok {
		table = t.catalogs[domain.LanguageLT]
	}

	tmpl, ok := table[key]
	if !ok {
		t.logger.Warn("missing translation key", "lang", lang, "key", key)
		return key
	}

	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
