package ai

import "fmt"

// GetTranslatePrompt returns the system prompt for direct text translation.
func GetTranslatePrompt(sourceLanguage, targetLanguage string) string {
	return fmt.Sprintf(`You are an expert translator. Translate the given text directly.

<context>
<source_language>%s</source_language>
<target_language>%s</target_language>
</context>

<instructions>
1. Translate from the language in <source_language> into the language in <target_language>
2. Output ONLY the direct translation, nothing else
3. Do not add punctuation that the original does not have
4. NO explanations, NO notes, NO markdown formatting
5. NO leading or trailing newlines
</instructions>`, sourceLanguage, targetLanguage)
}

// GetInterpretPrompt returns the system prompt for nuance interpretation.
// The answer is always written in the explanation language, regardless of
// the language pair being translated.
func GetInterpretPrompt(explanationLanguage string) string {
	return fmt.Sprintf(`You are an expert language assistant. Explain the nuance of the given text.

<context>
<explanation_language>%s</explanation_language>
</context>

<instructions>
1. You MUST write in the language specified in <explanation_language>. Responses in other languages are invalid
2. Explain the nuance, tone and cultural connotations of the text
3. Mention alternative readings where the text is ambiguous
4. Output plain text ONLY
5. NEVER use Markdown formatting or bullet symbols (no *, -, 1., 2.)
6. NO leading or trailing newlines
</instructions>`, explanationLanguage)
}

// GetInterpretInput returns the user prompt carrying the text whose nuance
// should be explained. textLanguage names the language the text is in.
func GetInterpretInput(text, textLanguage string) string {
	return fmt.Sprintf(`<text>
<language>%s</language>
<content>%s</content>
</text>

Explain the nuance of this text.`, textLanguage, text)
}
