// Package languages normalizes loose language inputs ("english", "en",
// "en-us") into the canonical codes depot manifests declare.
package languages

import "strings"

type Language struct {
	Code            string
	Name            string
	DeprecatedCodes []string
}

var known = []Language{
	{Code: "en-US", Name: "english", DeprecatedCodes: []string{"en"}},
	{Code: "de-DE", Name: "german", DeprecatedCodes: []string{"de"}},
	{Code: "fr-FR", Name: "french", DeprecatedCodes: []string{"fr"}},
	{Code: "es-ES", Name: "spanish", DeprecatedCodes: []string{"es"}},
	{Code: "it-IT", Name: "italian", DeprecatedCodes: []string{"it"}},
	{Code: "ja-JP", Name: "japanese", DeprecatedCodes: []string{"jp", "ja"}},
	{Code: "ko-KR", Name: "korean", DeprecatedCodes: []string{"ko"}},
	{Code: "pl-PL", Name: "polish", DeprecatedCodes: []string{"pl"}},
	{Code: "pt-BR", Name: "brazilian", DeprecatedCodes: []string{"br"}},
	{Code: "pt-PT", Name: "portuguese", DeprecatedCodes: []string{"pt"}},
	{Code: "ru-RU", Name: "russian", DeprecatedCodes: []string{"ru"}},
	{Code: "zh-Hans", Name: "chinese", DeprecatedCodes: []string{"cn", "zh"}},
	{Code: "cs-CZ", Name: "czech", DeprecatedCodes: []string{"cz", "cs"}},
	{Code: "hu-HU", Name: "hungarian", DeprecatedCodes: []string{"hu"}},
	{Code: "nl-NL", Name: "dutch", DeprecatedCodes: []string{"nl"}},
	{Code: "tr-TR", Name: "turkish", DeprecatedCodes: []string{"tr"}},
}

// Parse resolves value to a canonical language code. Unknown values fall
// back to en-US, matching what the catalog ships for every product.
func Parse(value string) string {
	if value == "" {
		return "en-US"
	}
	lower := strings.ToLower(value)
	for _, lang := range known {
		if strings.EqualFold(value, lang.Code) || lower == lang.Name {
			return lang.Code
		}
		for _, dep := range lang.DeprecatedCodes {
			if lower == dep {
				return lang.Code
			}
		}
	}
	return "en-US"
}
