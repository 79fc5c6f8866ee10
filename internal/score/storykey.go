package score

import "strings"

// storyKeyTokens is the maximum number of tokens kept in a story key.
const storyKeyTokens = 8

// stopwords are dropped from story keys. Words of length <= 3 are dropped
// unconditionally, so only longer function words need listing.
var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "amid": true, "been": true,
	"being": true, "could": true, "during": true, "from": true, "have": true,
	"into": true, "more": true, "over": true, "said": true, "says": true,
	"than": true, "that": true, "their": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "this": true, "those": true,
	"under": true, "were": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "will": true, "with": true, "would": true,
}

// StoryKey canonicalises a title into a cluster seed: lowercase, strip
// non-alphanumerics, drop stopwords and short words, keep the first 8
// remaining tokens joined with '-'. Semantically identical rewrites of a
// headline produce the same key.
func StoryKey(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	kept := make([]string, 0, storyKeyTokens)
	for _, tok := range strings.Fields(b.String()) {
		if len(tok) <= 3 || stopwords[tok] {
			continue
		}
		kept = append(kept, tok)
		if len(kept) == storyKeyTokens {
			break
		}
	}
	return strings.Join(kept, "-")
}

// TitleTokens returns the token set of a title under story-key normalisation,
// used for Jaccard comparison between cluster seeds.
func TitleTokens(title string) map[string]bool {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	set := make(map[string]bool)
	for _, tok := range strings.Fields(b.String()) {
		if len(tok) <= 3 || stopwords[tok] {
			continue
		}
		set[tok] = true
	}
	return set
}
