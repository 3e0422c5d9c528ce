// Package diff computes a sentence-level summary of how a page's text changed.
package diff

import (
	"regexp"
	"strings"
)

const (
	minSentenceLen = 15
	maxListed      = 10
	excerptItems   = 3
	maxExcerptLen  = 500
)

var sentenceSplitRe = regexp.MustCompile(`[.!?]\s+`)

// Result describes the sentences added and removed between two snapshots.
type Result struct {
	Added       []string // At most 10, in order of appearance
	Removed     []string // At most 10, in order of appearance
	Before      string   // First three removed sentences, up to 500 characters
	After       string   // First three added sentences, up to 500 characters
	ChangeRatio float64  // (added + removed) / max(old sentences, 1)
}

// Changed reports whether any sentence was added or removed.
func (r Result) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// Sentences splits text on terminal punctuation followed by whitespace and
// keeps trimmed fragments longer than 15 characters.
func Sentences(text string) []string {
	var out []string
	for _, part := range sentenceSplitRe.Split(text, -1) {
		part = strings.TrimSpace(part)
		if len([]rune(part)) > minSentenceLen {
			out = append(out, part)
		}
	}
	return out
}

// Compute compares two text snapshots sentence by sentence.
func Compute(oldText, newText string) Result {
	oldSentences := Sentences(oldText)
	newSentences := Sentences(newText)

	added := head(missingFrom(newSentences, oldSentences), maxListed)
	removed := head(missingFrom(oldSentences, newSentences), maxListed)

	denom := len(missingFrom(oldSentences, nil))
	if denom < 1 {
		denom = 1
	}

	return Result{
		Added:       added,
		Removed:     removed,
		Before:      excerpt(removed),
		After:       excerpt(added),
		ChangeRatio: float64(len(added)+len(removed)) / float64(denom),
	}
}

// missingFrom returns the distinct sentences of a that do not appear in b.
func missingFrom(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range b {
		seen[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func excerpt(sentences []string) string {
	joined := strings.Join(head(sentences, excerptItems), " ")
	if r := []rune(joined); len(r) > maxExcerptLen {
		return string(r[:maxExcerptLen])
	}
	return joined
}
