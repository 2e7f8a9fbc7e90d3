package pipeline

import (
	"referralflow/pkg/domain"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultVocabulary is the keyword list the fallback profile matches against.
var DefaultVocabulary = []string{ //nolint: gochecknoglobals
	"python", "go", "golang", "java", "javascript", "typescript", "react", "angular", "vue",
	"node.js", "node", "django", "flask", "fastapi", "spring", "c++", "c#", ".net", "rust",
	"ruby", "rails", "php", "kotlin", "swift", "scala", "sql", "postgresql", "mysql", "mongodb",
	"redis", "kafka", "graphql", "docker", "kubernetes", "terraform", "aws", "gcp", "azure",
	"linux", "git", "ci/cd", "machine learning", "deep learning", "data science", "pandas",
	"tensorflow", "pytorch", "nlp", "html", "css",
}

// FallbackOptions configures FallbackProfile. Empty fields use the defaults.
type FallbackOptions struct {
	Vocabulary   []string
	DefaultSkill string
	Position     string
	Years        string
}

func (o FallbackOptions) withDefaults() FallbackOptions {
	if len(o.Vocabulary) == 0 {
		o.Vocabulary = DefaultVocabulary
	}
	if strings.TrimSpace(o.DefaultSkill) == "" {
		o.DefaultSkill = "General"
	}
	if strings.TrimSpace(o.Position) == "" {
		o.Position = "Software Engineer"
	}
	if strings.TrimSpace(o.Years) == "" {
		o.Years = "N/A"
	}

	return o
}

// minPrefixKeyword is the shortest single-word keyword that also matches as a
// word prefix ("python" in "python3", "react" in "reactjs").
const minPrefixKeyword = 4

// FallbackProfile builds a profile by matching vocabulary keywords against
// the lower-cased text. Keywords match whole words; single-word keywords of
// at least minPrefixKeyword characters also match the start of a word. Short
// keywords never match inside a word, so "go" does not match "good". Skills
// keep vocabulary order. It never fails.
func FallbackProfile(text string, opts FallbackOptions) domain.Profile {
	opts = opts.withDefaults()
	joined := tokens(text)
	haystack := " " + joined + " "
	words := strings.Fields(joined)

	var skills []string
	seen := make(map[string]struct{}, len(opts.Vocabulary))
	for _, kw := range opts.Vocabulary {
		needle := tokens(kw)
		if needle == "" {
			continue
		}
		if _, dup := seen[needle]; dup {
			continue
		}
		if strings.Contains(haystack, " "+needle+" ") || prefixOfAny(words, needle) {
			seen[needle] = struct{}{}
			skills = append(skills, strings.ToLower(strings.TrimSpace(kw)))
		}
	}
	if len(skills) == 0 {
		skills = []string{opts.DefaultSkill}
	}

	return domain.Profile{
		TopSkills:         skills,
		YearsOfExperience: opts.Years,
		Positions:         []string{opts.Position},
		Source:            domain.ProfileSourceFallback,
	}
}

func prefixOfAny(words []string, needle string) bool {
	if utf8.RuneCountInString(needle) < minPrefixKeyword || strings.ContainsRune(needle, ' ') {
		return false
	}
	for _, w := range words {
		if strings.HasPrefix(w, needle) {
			return true
		}
	}

	return false
}

// tokens lower-cases s and joins its words with single spaces. Symbols that
// appear inside skill names (c++, c#, node.js, .net) are kept.
func tokens(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("+#.", r)
	})

	out := fields[:0]
	for _, f := range fields {
		// sentence punctuation, but keep a leading dot (.net)
		if f = strings.TrimRight(f, "."); f != "" {
			out = append(out, f)
		}
	}

	return strings.Join(out, " ")
}
