package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const promptTemplate = `<s>[INST] Read the résumé below and reply with ONLY a JSON object, no prose, with these keys:
- "candidate_name": the candidate's full name
- "top_skills": a list of the candidate's strongest skills
- "years_of_experience": total years of professional experience, as a number or string
- "positions": a list of job titles the candidate is qualified for

Résumé:
%s [/INST]</s>`

// Prompt embeds text into the fixed instruction template.
func Prompt(text string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(text))
}

// Truncate returns at most maxChars characters of text, never splitting a
// UTF-8 sequence. A non-positive maxChars leaves text unchanged.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i]
		}
		n++
	}

	return text
}
