package duallang

import (
	"strings"
	"testing"
)

func TestGetLanguageName(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"es_ES", "Spanish (Spain)"},
		{"ja_JP", "Japanese (Japan)"},
		{"en", "English (United States)"},    // short code expansion
		{"es-ES", "Spanish (Spain)"},         // hyphenated
		{"eo", "Esperanto"},                  // CLDR display name
		{"not a language", "not a language"}, // fallback
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			result := GetLanguageName(tt.code)
			if result != tt.expected {
				t.Errorf("GetLanguageName(%q) = %q, want %q", tt.code, result, tt.expected)
			}
		})
	}
}

func TestGetDirection(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"ar_SA", "rtl"},
		{"he_IL", "rtl"},
		{"fa_IR", "rtl"},
		{"ur_PK", "rtl"},
		{"ar", "rtl"}, // short code
		{"es_ES", "ltr"},
		{"en_US", "ltr"},
		{"ja_JP", "ltr"},
		{"zh_CN", "ltr"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			result := GetDirection(tt.code)
			if result != tt.expected {
				t.Errorf("GetDirection(%q) = %q, want %q", tt.code, result, tt.expected)
			}
		})
	}
}

func TestIsRTL(t *testing.T) {
	if !IsRTL("ar_SA") {
		t.Error("IsRTL(ar_SA) should be true")
	}
	if IsRTL("en_US") {
		t.Error("IsRTL(en_US) should be false")
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"es-ES", "es_ES"},
		{"en-US", "en_US"},
		{"es_ES", "es_ES"}, // already normalized
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeLocale(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeLocale(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestToHTMLLang(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"es_ES", "es-ES"},
		{"en_US", "en-US"},
		{"es-ES", "es-ES"}, // already HTML format
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ToHTMLLang(tt.input)
			if result != tt.expected {
				t.Errorf("ToHTMLLang(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetLocaleClarification(t *testing.T) {
	if hint := GetLocaleClarification("es_ES"); !strings.Contains(hint, "Castilian") {
		t.Errorf("es_ES hint = %q, want Castilian", hint)
	}
	if hint := GetLocaleClarification("pt"); !strings.Contains(hint, "Brazilian") {
		t.Errorf("pt hint = %q, want Brazilian (short code expansion)", hint)
	}
	if hint := GetLocaleClarification("de_DE"); hint != "" {
		t.Errorf("de_DE hint = %q, want empty", hint)
	}
}

func TestGetStyleDescription(t *testing.T) {
	if desc := GetStyleDescription(StyleLiteral); !strings.Contains(desc, "source wording") {
		t.Errorf("literal description = %q", desc)
	}
	if GetStyleDescription("bogus") != GetStyleDescription(StyleNeutral) {
		t.Error("unknown style should fall back to neutral")
	}
}

func TestValidateLanguage(t *testing.T) {
	valid := []string{"en", "es", "pt_BR", "zh-Hant", "fr_CA"}
	for _, code := range valid {
		if err := ValidateLanguage(code); err != nil {
			t.Errorf("ValidateLanguage(%q) = %v, want nil", code, err)
		}
	}

	invalid := []string{"", "e", "english language", "12"}
	for _, code := range invalid {
		if err := ValidateLanguage(code); err == nil {
			t.Errorf("ValidateLanguage(%q) should fail", code)
		}
	}
}

func TestSameLanguage(t *testing.T) {
	if !SameLanguage("en", "en_GB") {
		t.Error("en and en_GB share a base language")
	}
	if !SameLanguage("PT-br", "pt") {
		t.Error("comparison should ignore case and separator")
	}
	if SameLanguage("en", "es") {
		t.Error("en and es differ")
	}
}
