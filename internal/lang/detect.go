// Package lang detects the language of user messages so replies can follow it.
package lang

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Supported lists the tags the detector can resolve directly. Latin-script
// languages outside this list fall through to the previous-turn fallback.
var Supported = []language.Tag{
	language.English,
	language.French,
	language.German,
	language.Spanish,
	language.Portuguese,
	language.Italian,
	language.Japanese,
	language.Korean,
	language.Chinese,
	language.Russian,
	language.Arabic,
}

var matcher = language.NewMatcher(Supported)

// Detector resolves a language tag per user turn.
type Detector struct {
	fallback language.Tag
}

// NewDetector creates a detector with the given default tag. An empty or
// unparseable default resolves to English.
func NewDetector(defaultTag string) *Detector {
	tag, err := language.Parse(strings.TrimSpace(defaultTag))
	if err != nil || tag == language.Und {
		tag = language.English
	}
	return &Detector{fallback: tag}
}

// Detect returns the language tag for text. Ambiguous input falls back to
// previous (the prior turn's tag) when set, else the configured default.
func (d *Detector) Detect(text string, previous language.Tag) language.Tag {
	if tag, ok := detectByScript(text); ok {
		return tag
	}
	if tag, ok := detectByStopwords(text); ok {
		return tag
	}
	if previous != language.Und {
		return previous
	}
	return d.fallback
}

// Fallback returns the configured default tag.
func (d *Detector) Fallback() language.Tag {
	return d.fallback
}

// detectByScript classifies text whose dominant script is unambiguous.
func detectByScript(text string) (language.Tag, bool) {
	var han, kana, hangul, cyrillic, arabic, total int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		total++
		switch {
		case unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
			kana++
		case unicode.Is(unicode.Han, r):
			han++
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.Is(unicode.Arabic, r):
			arabic++
		}
	}
	if total == 0 {
		return language.Und, false
	}
	threshold := total / 4
	switch {
	case kana > 0:
		// Any kana marks Japanese even in mixed Han text.
		return language.Japanese, true
	case hangul > threshold:
		return language.Korean, true
	case han > threshold:
		return language.Chinese, true
	case cyrillic > threshold:
		return language.Russian, true
	case arabic > threshold:
		return language.Arabic, true
	}
	return language.Und, false
}

// stopwords maps distinctive function words to Latin-script languages. Words
// shared across languages (e.g. "la", "de") are deliberately absent.
var stopwords = map[language.Tag][]string{
	language.English:    {"the", "what", "which", "this", "and", "with", "how", "please", "show", "is"},
	language.French:     {"quelle", "quel", "est", "aujourd'hui", "les", "une", "vous", "avec", "dans", "pour", "comment"},
	language.German:     {"das", "ist", "und", "nicht", "welche", "wie", "heute", "bitte", "eine", "für"},
	language.Spanish:    {"qué", "cuál", "hoy", "una", "con", "para", "cómo", "por", "los", "está"},
	language.Portuguese: {"qual", "hoje", "uma", "com", "não", "como", "você", "para", "está"},
	language.Italian:    {"che", "qual", "oggi", "una", "con", "come", "per", "sono", "questo"},
}

func detectByStopwords(text string) (language.Tag, bool) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return language.Und, false
	}
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		seen[strings.Trim(w, ".,!?;:\"()")] = true
	}

	best := language.Und
	bestHits := 0
	for tag, list := range stopwords {
		hits := 0
		for _, w := range list {
			if seen[w] {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = tag, hits
		} else if hits == bestHits && hits > 0 {
			// Tie between languages is ambiguous.
			best = language.Und
		}
	}
	if best == language.Und || bestHits == 0 {
		return language.Und, false
	}
	return best, true
}

// Canonical maps an arbitrary tag onto the closest supported one. Used when
// a configured default names a regional variant (e.g. pt-BR).
func Canonical(tag language.Tag) language.Tag {
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return tag
	}
	return Supported[idx]
}

// Name returns the English display name for a tag, e.g. "French".
// Prompts use it to tell the engine which language to reply in.
func Name(tag language.Tag) string {
	return display.English.Languages().Name(Canonical(tag))
}
