package speakable

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Words that end with a period without ending the sentence.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "sr": true, "jr": true,
	"ph.d": true, "m.d": true, "b.a": true, "m.a": true, "b.s": true,
	"inc": true, "ltd": true, "co": true, "corp": true, "llc": true,
	"i.e": true, "e.g": true, "vs": true, "cf": true, "al": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true, "jul": true,
	"aug": true, "sep": true, "sept": true, "oct": true, "nov": true, "dec": true,
	"st": true, "ave": true, "blvd": true, "no": true, "vol": true, "fig": true,
	"u.s": true, "u.k": true, "e.u": true,
}

// Sentences splits text at sentence-ending punctuation. Abbreviations,
// initials and decimal points do not end a sentence.
func Sentences(text string) []string {
	runes := []rune(text)
	var sentences []string

	add := func(s string) {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			sentences = append(sentences, s)
		}
	}

	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}

		end := i + 1
		for end < len(runes) && isTerminal(runes[end]) {
			end++
		}
		for end < len(runes) && isCloser(runes[end]) {
			end++
		}

		// "3.14" or "example.com"
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			i = end - 1
			continue
		}
		if runes[i] == '.' && end == i+1 && isAbbreviation(runes[start:i]) {
			continue
		}

		add(string(runes[start:end]))
		start = end
		i = end - 1
	}
	add(string(runes[start:]))

	return sentences
}

// Chunks splits text into pieces of at most limit bytes, breaking between
// sentences where possible, then between words, then anywhere.
func Chunks(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, sentence := range Sentences(text) {
		for len(sentence) > limit {
			flush()
			head, tail := splitAt(sentence, limit)
			chunks = append(chunks, head)
			sentence = tail
		}
		if sentence == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+1+len(sentence) > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	flush()

	return chunks
}

// splitAt cuts s at the last space within limit bytes, or at the last
// rune boundary when there is none.
func splitAt(s string, limit int) (string, string) {
	cut := strings.LastIndexByte(s[:limit+1], ' ')
	if cut <= 0 {
		cut = limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(s)
		}
		return s[:cut], strings.TrimSpace(s[cut:])
	}
	return s[:cut], strings.TrimSpace(s[cut+1:])
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	return r == '"' || r == '\'' || r == ')' || r == ']' || r == '”' || r == '’'
}

// isAbbreviation reports whether the word before a period is an
// abbreviation or a single-letter initial.
func isAbbreviation(before []rune) bool {
	fields := strings.Fields(string(before))
	if len(fields) == 0 {
		return false
	}
	word := strings.TrimLeft(fields[len(fields)-1], "(\"'[")
	if utf8.RuneCountInString(word) == 1 && unicode.IsLetter([]rune(word)[0]) {
		return true
	}
	return abbreviations[strings.ToLower(word)]
}
