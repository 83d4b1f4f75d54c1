package qa

import (
	"context"
	"math"
	"regexp"
	"strings"
)

// LexicalExtractor selects answer spans without a model: the passage is
// split into sentences and the sentence with the highest token overlap
// with the question wins. Confidence is the Ochiai coefficient
// |Q∩S| / sqrt(|Q||S|), which lands in [0, 1] by construction.
//
// It is fully deterministic, which also makes it the reference
// extractor for tests.
type LexicalExtractor struct{}

// NewLexicalExtractor creates a lexical answer extractor.
func NewLexicalExtractor() *LexicalExtractor {
	return &LexicalExtractor{}
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)

// ExtractSpan scores every sentence of the passage against the question
// and returns the best one. Ties go to the earliest sentence, keeping
// the result reproducible.
func (e *LexicalExtractor) ExtractSpan(_ context.Context, question, passage string) (Span, error) {
	qset := tokenSet(question)

	best := Span{}
	for _, s := range splitSentences(passage) {
		score := ochiai(qset, passage[s.start:s.end])
		if score > best.Confidence {
			best = Span{
				Text:       passage[s.start:s.end],
				Start:      s.start,
				End:        s.end,
				Confidence: score,
			}
		}
	}

	return best, nil
}

type sentenceBounds struct {
	start, end int
}

// splitSentences finds sentence boundaries at runs of '.', '!', '?' or
// newlines, recording byte offsets of the trimmed sentences.
func splitSentences(text string) []sentenceBounds {
	var out []sentenceBounds
	start := 0

	flush := func(end int) {
		for start < end && isSpaceByte(text[start]) {
			start++
		}
		trimmed := end
		for trimmed > start && isSpaceByte(text[trimmed-1]) {
			trimmed--
		}
		if trimmed > start {
			out = append(out, sentenceBounds{start: start, end: trimmed})
		}
		start = end
	}

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?', '\n':
			// Swallow the terminator run so "..." ends one sentence.
			end := i + 1
			for end < len(text) && (text[end] == '.' || text[end] == '!' || text[end] == '?') {
				end++
			}
			flush(end)
			i = end - 1
		}
	}
	flush(len(text))

	return out
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func tokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// ochiai computes |A∩B| / sqrt(|A||B|) over the question token set and
// the sentence's distinct tokens.
func ochiai(qset map[string]struct{}, sentence string) float64 {
	stoks := wordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(stoks))
	inter := 0
	for _, t := range stoks {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	if len(qset) == 0 || len(seen) == 0 {
		return 0
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(seen)))
}
