package provider

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ali-185/DualLang"
)

// buildSystemPrompt builds the instructions shared by the LLM providers.
// Items are sentence fragments cut at punctuation, shown next to the
// original to a language learner.
func buildSystemPrompt(req TransformRequest) string {
	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = "en"
	}

	sourceName := duallang.GetLanguageName(sourceLang)
	targetName := duallang.GetLanguageName(req.TargetLang)
	localeHint := duallang.GetLocaleClarification(req.TargetLang)
	styleDesc := duallang.GetStyleDescription(req.Style)

	contextText := "The text comes from a book."
	if req.Context != "" {
		contextText = fmt.Sprintf("The text comes from: %s.", req.Context)
	}

	prompt := fmt.Sprintf(`# Role
You translate %s into %s for a dual-language edition. Every translated phrase is printed right after the original phrase, for a reader learning %s.

# Context
%s

# Register
%s

# Task
Translate each item of the input array into %s.

# Rules
- **Fragments**: Items are pieces of sentences cut at punctuation. Translate each one on its own; do not merge, split, reorder or complete them.
- **Punctuation**: Do not add a trailing period or other punctuation the item does not have.
- **Entities**: Keep HTML character references such as &amp; or &#8212; exactly as written.
- **Whitespace**: Do not add leading or trailing spaces.
- **Untranslatable items**: Numbers, names and symbols are returned unchanged.`,
		sourceName, targetName, sourceName, contextText, styleDesc, targetName)

	if localeHint != "" {
		prompt += fmt.Sprintf("\n- **Locale**: %s", localeHint)
	}

	if len(req.Glossary) > 0 {
		sources := make([]string, 0, len(req.Glossary))
		for source := range req.Glossary {
			sources = append(sources, source)
		}
		sort.Strings(sources)

		prompt += "\n\n# Glossary\nWhen you encounter these phrases, prefer these translations:"
		for _, source := range sources {
			prompt += fmt.Sprintf("\n- \"%s\" → %s", source, req.Glossary[source])
		}
	}

	prompt += `

# Format
Return a valid JSON object with a single key "translations" containing an array of strings with exactly one entry per input item, in the same order.
Example: { "translations": ["translated item 1", "translated item 2"] }
- Do NOT wrap in Markdown code blocks.`

	if len(req.ExcludedTerms) > 0 {
		terms := strings.Join(req.ExcludedTerms, "\n- ")
		prompt += fmt.Sprintf("\n\n# Exclusions\nDo NOT translate the following terms. Keep them exactly as they appear in the source:\n- %s", terms)
	}

	return prompt
}

func buildUserMessage(req TransformRequest) string {
	data, _ := json.Marshal(req.Texts)
	return string(data)
}

// parseResponse extracts the translations array from a model reply.
func parseResponse(provider, content string, expectedCount int) ([]string, error) {
	content = stripCodeFence(content)

	var objResult map[string]interface{}
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		if translations, ok := objResult["translations"]; ok {
			if arr, ok := translations.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}

		// Fallback: find first array value
		for _, v := range objResult {
			if arr, ok := v.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
	}

	var arrResult []interface{}
	if err := json.Unmarshal([]byte(content), &arrResult); err == nil {
		return toStringSlice(arrResult, expectedCount)
	}

	return nil, &duallang.ProviderError{
		Message:   fmt.Sprintf("invalid response format from %s", provider),
		Retryable: true,
	}
}

// stripCodeFence removes a ```json fence some models add despite being
// told not to.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func toStringSlice(arr []interface{}, expectedCount int) ([]string, error) {
	result := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = fmt.Sprintf("%v", v)
		}
	}

	if len(result) != expectedCount {
		return nil, &duallang.CountMismatchError{
			Expected: expectedCount,
			Got:      len(result),
		}
	}

	return result, nil
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
		"unavailable",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
