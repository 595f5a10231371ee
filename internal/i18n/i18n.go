package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// EnvLang overrides the system locale
const EnvLang = "UPDATEGEN_LANG"

var (
	bundle          *goi18n.Bundle
	localizer       *goi18n.Localizer
	currentLanguage = language.English
	supported       = []language.Tag{
		language.English,
		language.Chinese,
	}
	matcher = language.NewMatcher(supported)
)

//go:embed locales/*.toml
var localeFS embed.FS

// Init loads the embedded catalogs and picks a language from, in order:
// langOverride (--lang or config), UPDATEGEN_LANG, LC_ALL, LC_MESSAGES,
// LANG, the Windows UI languages, then English.
func Init(langOverride string) error {
	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(localeFS, "locales/*.toml")
	if err != nil {
		return fmt.Errorf("list locales: %w", err)
	}
	for _, file := range files {
		if _, err := b.LoadMessageFileFS(localeFS, file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	chosen := selectLanguage(candidates(langOverride))
	bundle = b
	localizer = goi18n.NewLocalizer(bundle, chosen.String(), language.English.String())
	currentLanguage = chosen
	return nil
}

// T translates a message by ID. Missing translations fall back to English
// and then to the ID itself.
func T(id string, data ...map[string]interface{}) string {
	if localizer == nil {
		if err := Init(""); err != nil {
			fmt.Fprintf(os.Stderr, "i18n init failed: %v\n", err)
			return id
		}
	}

	var templateData map[string]interface{}
	if len(data) > 0 {
		templateData = data[0]
	}

	msg, _ := localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: templateData,
		PluralCount:  pluralCount(templateData),
	})
	// A missing plural form still yields the "other" text alongside err.
	if msg == "" {
		return id
	}
	return msg
}

// CurrentLanguage returns the chosen language tag
func CurrentLanguage() language.Tag {
	return currentLanguage
}

// MessageIDs returns the IDs defined in the catalog of lang, sorted
func MessageIDs(lang string) ([]string, error) {
	data, err := localeFS.ReadFile("locales/active." + lang + ".toml")
	if err != nil {
		return nil, err
	}
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func candidates(langOverride string) []string {
	var out []string
	if v := strings.TrimSpace(langOverride); v != "" {
		out = append(out, v)
	}
	for _, key := range []string{EnvLang, "LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			out = append(out, v)
		}
	}
	// Windows rarely sets locale variables.
	if len(out) == 0 {
		out = append(out, getPlatformLocales()...)
	}
	return out
}

// selectLanguage returns the supported language of the first candidate
// that parses. "C" and "POSIX" are skipped.
func selectLanguage(cands []string) language.Tag {
	for _, cand := range cands {
		tag, ok := parseLocale(cand)
		if !ok {
			continue
		}
		_, index, confidence := matcher.Match(tag)
		if confidence == language.No {
			return language.English
		}
		return supported[index]
	}
	return language.English
}

// parseLocale turns zh_CN.UTF-8 style values into a language tag
func parseLocale(value string) (language.Tag, bool) {
	clean := strings.TrimSpace(value)
	if i := strings.IndexAny(clean, ".@"); i >= 0 {
		clean = clean[:i]
	}
	clean = strings.ReplaceAll(clean, "_", "-")
	switch strings.ToUpper(clean) {
	case "", "C", "POSIX":
		return language.Und, false
	}

	tag, err := language.Parse(clean)
	if err != nil {
		lower := strings.ToLower(clean)
		switch {
		case strings.HasPrefix(lower, "zh"):
			return language.Chinese, true
		case strings.HasPrefix(lower, "en"):
			return language.English, true
		}
		return language.Und, false
	}
	return tag, true
}

func pluralCount(data map[string]interface{}) interface{} {
	for _, key := range []string{"Count", "Total"} {
		if val, ok := data[key]; ok {
			return val
		}
	}
	return nil
}
