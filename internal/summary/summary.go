// Package summary builds the deterministic, locally computed digest used when
// the remote summarizer is unavailable or unconfigured. It is intentionally
// simple extractive scoring: tokenize the transcript, weight sentences by the
// frequency of their non-stopword terms, and return the highest-scoring
// sentences in their original order. Same transcript in, same summary out —
// the degraded path must be reproducible.
package summary

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// maxConcernRunes caps the "concern" excerpt shown at the top of the
// published message.
const maxConcernRunes = 200

// maxFallbackSentences bounds the extractive summary length.
const maxFallbackSentences = 2

// wordRE extracts letter/digit tokens.
var wordRE = regexp.MustCompile(`[\p{L}\p{N}]+`)

// sentenceRE splits on sentence-ending punctuation followed by whitespace.
var sentenceRE = regexp.MustCompile(`[.!?]+\s+`)

// stopWords are dropped before scoring so filler does not dominate short
// support-call transcripts.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {},
	"is": {}, "are": {}, "for": {}, "on": {}, "with": {}, "by": {}, "from": {},
	"at": {}, "as": {}, "that": {}, "this": {}, "it": {}, "be": {}, "was": {}, "were": {},
	"i": {}, "you": {}, "we": {}, "he": {}, "she": {}, "they": {}, "my": {}, "your": {},
	"so": {}, "ok": {}, "okay": {}, "yes": {}, "no": {}, "hello": {}, "hi": {},
	"please": {}, "thanks": {}, "thank": {},
}

// Concern returns the short excerpt that leads the published message: the
// first line of the transcript, clipped to 200 runes with an ellipsis.
func Concern(transcript string) string {
	t := strings.TrimSpace(transcript)
	if t == "" {
		return ""
	}
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if utf8.RuneCountInString(t) > maxConcernRunes {
		t = string([]rune(t)[:maxConcernRunes]) + "..."
	}
	return t
}

// Fallback produces the local summary for a transcript. Empty or whitespace
// input yields an empty summary; very short transcripts are returned
// whitespace-collapsed as-is.
func Fallback(transcript string) string {
	sentences := splitSentences(transcript)
	if len(sentences) == 0 {
		return ""
	}
	if len(sentences) <= maxFallbackSentences {
		return strings.Join(sentences, " ")
	}

	// Document-wide term frequencies.
	freq := make(map[string]int)
	for _, s := range sentences {
		for _, tok := range tokens(s) {
			freq[tok]++
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(sentences))
	for i, s := range sentences {
		toks := tokens(s)
		if len(toks) == 0 {
			continue
		}
		sum := 0
		for _, tok := range toks {
			sum += freq[tok]
		}
		// Normalize by length so long rambling turns do not always win.
		ranked = append(ranked, scored{idx: i, score: float64(sum) / float64(len(toks))})
	}
	if len(ranked) == 0 {
		return strings.Join(sentences[:maxFallbackSentences], " ")
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	keep := ranked
	if len(keep) > maxFallbackSentences {
		keep = keep[:maxFallbackSentences]
	}
	// Restore transcript order for readability.
	sort.Slice(keep, func(i, j int) bool { return keep[i].idx < keep[j].idx })

	out := make([]string, 0, len(keep))
	for _, k := range keep {
		out = append(out, sentences[k.idx])
	}
	return strings.Join(out, " ")
}

// splitSentences returns trimmed, whitespace-collapsed sentences.
func splitSentences(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	parts := sentenceRE.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		fields := strings.Fields(p)
		if len(fields) == 0 {
			continue
		}
		out = append(out, strings.Join(fields, " "))
	}
	return out
}

// tokens returns lowercased non-stopword terms of a sentence.
func tokens(s string) []string {
	raw := wordRE.FindAllString(strings.ToLower(s), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := stopWords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}
