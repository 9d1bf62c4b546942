package knowledge

import (
	"regexp"
	"strings"
)

// Chunk is a contiguous paragraph of reference text extracted from a
// knowledge-base file. Content and the derived keyword set are immutable
// after index build; Score is query-dependent, recomputed per query and not
// part of the chunk's identity.
type Chunk struct {
	Source   string   `json:"source"`
	Content  string   `json:"content"`
	Keywords []string `json:"keywords"`
	Score    int      `json:"score"`
}

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	blankLines = regexp.MustCompile(`\n\s*\n`)
)

// Keywords lower-cases the text, strips non-word characters, splits on
// whitespace and keeps unique tokens longer than 3 characters, preserving
// first-seen order.
func Keywords(text string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), "")
	seen := make(map[string]struct{})
	var keywords []string
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= 3 {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}

// splitChunks breaks file content into chunks on blank-line boundaries,
// discarding empty ones.
func splitChunks(source, content string) []Chunk {
	var chunks []Chunk
	for _, block := range blankLines.Split(content, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		chunks = append(chunks, Chunk{Source: source, Content: block, Keywords: Keywords(block)})
	}
	return chunks
}

// intersectionScore counts how many of the chunk's keywords appear in the
// query keyword set. Simple intersection count, no weighting.
func (c Chunk) intersectionScore(querySet map[string]struct{}) int {
	score := 0
	for _, kw := range c.Keywords {
		if _, ok := querySet[kw]; ok {
			score++
		}
	}
	return score
}

// keywordSet converts a keyword slice into a membership set.
func keywordSet(keywords []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		set[kw] = struct{}{}
	}
	return set
}
