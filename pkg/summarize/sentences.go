package summarize

import (
	"math"
	"sort"
	"strings"

	"newsdesk/pkg/textutil"
)

// sentence is a unit of extractive selection, keeping its source position
// so selected sentences can be re-emitted in reading order.
type sentence struct {
	text  string
	pos   int
	words int
	score float64
}

// splitSentences breaks text on terminal punctuation. A trailing fragment
// without a terminator still counts as a sentence.
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			// Consume any run of closing punctuation.
			for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?' || runes[i+1] == '"' || runes[i+1] == '\'') {
				i++
				b.WriteRune(runes[i])
			}
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// rankSentences scores each sentence by the normalized corpus frequency of
// its content words, damped by sentence length so long sentences do not
// dominate. Frequency-based centrality; the externally observable contract
// is only the length-targeting policy.
func rankSentences(raw []string) []sentence {
	freq := map[string]float64{}
	tokenized := make([][]string, len(raw))
	for i, s := range raw {
		tokens := contentWords(s)
		tokenized[i] = tokens
		for _, tok := range tokens {
			freq[tok]++
		}
	}

	var maxFreq float64
	for _, f := range freq {
		if f > maxFreq {
			maxFreq = f
		}
	}

	out := make([]sentence, 0, len(raw))
	for i, s := range raw {
		var score float64
		if maxFreq > 0 && len(tokenized[i]) > 0 {
			for _, tok := range tokenized[i] {
				score += freq[tok] / maxFreq
			}
			score /= math.Sqrt(float64(len(tokenized[i])))
		}
		out = append(out, sentence{
			text:  s,
			pos:   i,
			words: textutil.WordCount(s),
			score: score,
		})
	}
	return out
}

// selectByBudget picks the highest-scoring sentences whose combined word
// count stays within budget, then restores source order. Texts with fewer
// than two sentences yield nothing; the caller falls back to the source
// text verbatim.
func selectByBudget(ranked []sentence, budget int) string {
	if len(ranked) < 2 || budget <= 0 {
		return ""
	}

	byScore := make([]sentence, len(ranked))
	copy(byScore, ranked)
	sort.SliceStable(byScore, func(i, j int) bool { return byScore[i].score > byScore[j].score })

	var picked []sentence
	used := 0
	for _, s := range byScore {
		if s.words == 0 || used+s.words > budget {
			continue
		}
		picked = append(picked, s)
		used += s.words
	}
	if len(picked) == 0 {
		return ""
	}

	sort.Slice(picked, func(i, j int) bool { return picked[i].pos < picked[j].pos })
	parts := make([]string, len(picked))
	for i, s := range picked {
		parts[i] = s.text
	}
	return strings.Join(parts, " ")
}
