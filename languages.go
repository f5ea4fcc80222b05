package duallang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageNames maps locale codes to human-readable names for AI prompts.
var LanguageNames = map[string]string{
	// Tier 1 (High Quality)
	"en_US": "English (United States)",
	"en_GB": "English (United Kingdom)",
	"de_DE": "German (Germany)",
	"es_ES": "Spanish (Spain)",
	"es_MX": "Spanish (Mexico)",
	"fr_FR": "French (France)",
	"it_IT": "Italian (Italy)",
	"ja_JP": "Japanese (Japan)",
	"pt_BR": "Portuguese (Brazil)",
	"pt_PT": "Portuguese (Portugal)",
	"zh_CN": "Chinese (Simplified)",
	"zh_TW": "Chinese (Traditional)",

	// Tier 2 (Good Quality)
	"ar_SA": "Arabic (Saudi Arabia)",
	"bn_BD": "Bengali (Bangladesh)",
	"cs_CZ": "Czech (Czech Republic)",
	"da_DK": "Danish (Denmark)",
	"el_GR": "Greek (Greece)",
	"fi_FI": "Finnish (Finland)",
	"he_IL": "Hebrew (Israel)",
	"hi_IN": "Hindi (India)",
	"hu_HU": "Hungarian (Hungary)",
	"id_ID": "Indonesian (Indonesia)",
	"ko_KR": "Korean (South Korea)",
	"nl_NL": "Dutch (Netherlands)",
	"nb_NO": "Norwegian Bokmål (Norway)",
	"pl_PL": "Polish (Poland)",
	"ro_RO": "Romanian (Romania)",
	"ru_RU": "Russian (Russia)",
	"sv_SE": "Swedish (Sweden)",
	"th_TH": "Thai (Thailand)",
	"tr_TR": "Turkish (Turkey)",
	"uk_UA": "Ukrainian (Ukraine)",
	"vi_VN": "Vietnamese (Vietnam)",

	// Tier 3 (Functional)
	"bg_BG": "Bulgarian (Bulgaria)",
	"ca_ES": "Catalan (Spain)",
	"fa_IR": "Persian (Iran)",
	"hr_HR": "Croatian (Croatia)",
	"lt_LT": "Lithuanian (Lithuania)",
	"lv_LV": "Latvian (Latvia)",
	"ms_MY": "Malay (Malaysia)",
	"sk_SK": "Slovak (Slovakia)",
	"sl_SI": "Slovenian (Slovenia)",
	"sr_RS": "Serbian (Serbia)",
	"sw_KE": "Swahili (Kenya)",
	"tl_PH": "Tagalog (Philippines)",
	"ur_PK": "Urdu (Pakistan)",
}

// ShortCodeToLocale maps short language codes to full locale codes.
var ShortCodeToLocale = map[string]string{
	"en": "en_US",
	"de": "de_DE",
	"es": "es_ES",
	"fr": "fr_FR",
	"it": "it_IT",
	"ja": "ja_JP",
	"pt": "pt_BR",
	"zh": "zh_CN",
	"ko": "ko_KR",
	"ru": "ru_RU",
	"ar": "ar_SA",
	"he": "he_IL",
	"hi": "hi_IN",
	"nl": "nl_NL",
	"pl": "pl_PL",
	"tr": "tr_TR",
	"vi": "vi_VN",
}

// localeClarifications disambiguate regional variants in prompts.
var localeClarifications = map[string]string{
	"es_ES": "Use Castilian Spanish (Spain): vosotros forms and peninsular vocabulary.",
	"es_MX": "Use Mexican Spanish: ustedes forms and Latin American vocabulary.",
	"pt_BR": "Use Brazilian Portuguese spelling and vocabulary.",
	"pt_PT": "Use European Portuguese spelling and vocabulary.",
	"zh_CN": "Use Simplified Chinese characters.",
	"zh_TW": "Use Traditional Chinese characters as used in Taiwan.",
	"nb_NO": "Use Norwegian Bokmål, not Nynorsk.",
	"fr_CA": "Use Canadian French vocabulary.",
	"en_GB": "Use British English spelling.",
}

// styleDescriptions describe each TranslationStyle for prompts.
var styleDescriptions = map[TranslationStyle]string{
	StyleFormal:  "Use a formal, polished register.",
	StyleNeutral: "Use a neutral register that follows the tone of the source text.",
	StyleCasual:  "Use a relaxed, conversational register.",
	StyleLiteral: "Stay close to the source wording and word order where the target language allows it; the reader compares each phrase with the original.",
}

// GetLanguageName returns the human-readable name for a language code.
// Codes missing from LanguageNames are resolved through CLDR display names;
// unknown codes are returned unchanged.
func GetLanguageName(langCode string) string {
	code := NormalizeLocale(langCode)
	if name, ok := LanguageNames[code]; ok {
		return name
	}
	// Try expanding short code
	if locale, ok := ShortCodeToLocale[code]; ok {
		if name, ok := LanguageNames[locale]; ok {
			return name
		}
	}
	if tag, err := language.Parse(ToHTMLLang(code)); err == nil {
		if name := display.English.Tags().Name(tag); name != "" {
			return name
		}
	}
	return langCode
}

// GetLocaleClarification returns an extra prompt hint for regional variants,
// or "" when none is needed.
func GetLocaleClarification(langCode string) string {
	code := NormalizeLocale(langCode)
	if hint, ok := localeClarifications[code]; ok {
		return hint
	}
	if locale, ok := ShortCodeToLocale[code]; ok {
		return localeClarifications[locale]
	}
	return ""
}

// GetStyleDescription describes a translation style; unknown styles fall
// back to neutral.
func GetStyleDescription(style TranslationStyle) string {
	if desc, ok := styleDescriptions[style]; ok {
		return desc
	}
	return styleDescriptions[StyleNeutral]
}

// ValidateLanguage checks that code is a well-formed BCP 47 language tag,
// accepting underscores as separators ("pt_BR").
func ValidateLanguage(code string) error {
	if code == "" {
		return fmt.Errorf("language code is empty")
	}
	if _, err := language.Parse(ToHTMLLang(code)); err != nil {
		return fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return nil
}

// SameLanguage reports whether two codes share a base language
// ("en" and "en_GB").
func SameLanguage(a, b string) bool {
	return normalizeBaseLang(a) == normalizeBaseLang(b)
}

// normalizeBaseLang extracts the base language code (e.g., "en" from "en_US").
func normalizeBaseLang(lang string) string {
	parts := strings.Split(NormalizeLocale(lang), "_")
	return strings.ToLower(parts[0])
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(langCode string) string {
	if RTLLanguages[normalizeBaseLang(langCode)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(langCode string) bool {
	return GetDirection(langCode) == "rtl"
}

// NormalizeLocale converts a language code to the standard format (e.g., "es-ES" → "es_ES").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}

// ToHTMLLang converts a locale code to HTML lang attribute format (e.g., "es_ES" → "es-ES").
func ToHTMLLang(langCode string) string {
	return strings.ReplaceAll(langCode, "_", "-")
}
