package service

import "strings"

// Direction is the resolved stage ordering for one request. Exactly two
// orderings exist: parallel, and sequential translate-then-interpret.
type Direction struct {
	// Parallel reports whether translation and interpretation may be
	// dispatched concurrently.
	Parallel bool
	// InterpretTranslation reports whether the interpretation stage must
	// explain the translated text instead of the original input.
	InterpretTranslation bool
}

// ResolveDirection decides stage ordering for a language pair.
//
// Interpretation always explains the text that is foreign to the reader,
// in the explanation language. When the source text is foreign (source
// language differs from the explanation language), the interpretation
// prompt depends only on the original input, so both stages may run
// concurrently. When the source text is already in the explanation
// language, the foreign text is the translation itself, which creates a
// hard dependency: translation must complete before interpretation starts.
func ResolveDirection(sourceLanguage, targetLanguage, explanationLanguage string) Direction {
	if sameLanguage(sourceLanguage, explanationLanguage) {
		return Direction{Parallel: false, InterpretTranslation: true}
	}
	return Direction{Parallel: true, InterpretTranslation: false}
}

func sameLanguage(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
