package summarize

import (
	"regexp"
	"sort"
	"strings"
)

// candidateRatio caps the keyword candidate pool at a fixed fraction of
// the distinct content words, independent of the caller's summary ratio.
const candidateRatio = 0.25

var wordPattern = regexp.MustCompile(`[0-9A-Za-z]+`)

// stopwords is a compact English list; enough to keep glue words out of
// frequency rankings.
var stopwords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`a about above after again all also am an and any are as at be because been
		before being below between both but by can could did do does doing down during each few for from further
		had has have having he her here hers him his how i if in into is it its itself just me more most my no nor
		not now of off on once only or other our out over own said same she should so some such than that the their
		them then there these they this those through to too under until up very was we were what when where which
		while who whom why will with would you your`) {
		stopwords[w] = true
	}
}

// contentWords tokenizes text into lowercased, lemmatized, stopword-free
// word tokens.
func contentWords(text string) []string {
	var out []string
	for _, raw := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(raw) < 3 || stopwords[raw] {
			continue
		}
		out = append(out, lemma(raw))
	}
	return out
}

// lemma applies light suffix stripping so inflected forms collapse onto a
// shared key: plurals, -ing, -ed.
func lemma(w string) string {
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "sses"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 3:
		return w[:len(w)-1]
	case strings.HasSuffix(w, "ing") && len(w) > 5:
		return w[:len(w)-3]
	case strings.HasSuffix(w, "ed") && len(w) > 4:
		return w[:len(w)-2]
	default:
		return w
	}
}

// Keywords extracts up to n ranked keywords from text. Candidates are
// frequency-ranked lemmas; the returned strings are the surface form first
// seen for each lemma.
func Keywords(text string, n int) []string {
	if n <= 0 {
		return nil
	}

	type entry struct {
		surface string
		count   int
		first   int
	}
	byLemma := map[string]*entry{}
	order := 0
	for _, raw := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(raw) < 3 || stopwords[raw] {
			continue
		}
		key := lemma(raw)
		if e, ok := byLemma[key]; ok {
			e.count++
		} else {
			byLemma[key] = &entry{surface: raw, count: 1, first: order}
		}
		order++
	}
	if len(byLemma) == 0 {
		return nil
	}

	entries := make([]*entry, 0, len(byLemma))
	for _, e := range byLemma {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].first < entries[j].first
	})

	pool := int(float64(len(entries)) * candidateRatio)
	if pool < 1 {
		pool = 1
	}
	if pool > len(entries) {
		pool = len(entries)
	}
	if n > pool {
		n = pool
	}

	out := make([]string, 0, n)
	for _, e := range entries[:n] {
		out = append(out, e.surface)
	}
	return out
}
