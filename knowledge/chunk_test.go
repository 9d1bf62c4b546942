package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and strips punctuation",
			text: "Data Analytics, bootcamp!",
			want: []string{"data", "analytics", "bootcamp"},
		},
		{
			name: "drops short tokens",
			text: "we can do a lot with this",
			want: []string{"with", "this"},
		},
		{
			name: "deduplicates preserving order",
			text: "python python basics python",
			want: []string{"python", "basics"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Keywords(tt.text))
		})
	}
}

func TestSplitChunks(t *testing.T) {
	content := "First paragraph here.\n\nSecond paragraph follows.\n\n\n\nThird one."
	chunks := splitChunks("doc.txt", content)
	assert.Len(t, chunks, 3)
	assert.Equal(t, "doc.txt", chunks[0].Source)
	assert.Equal(t, "First paragraph here.", chunks[0].Content)
	assert.Equal(t, "Third one.", chunks[2].Content)
}

func TestSplitChunks_DiscardsEmpty(t *testing.T) {
	chunks := splitChunks("doc.txt", "\n\n   \n\nonly real paragraph\n\n")
	assert.Len(t, chunks, 1)
	assert.Equal(t, "only real paragraph", chunks[0].Content)
}

func TestIntersectionScore(t *testing.T) {
	c := Chunk{Keywords: []string{"python", "analytics", "bootcamp"}}
	assert.Equal(t, 2, c.intersectionScore(keywordSet([]string{"python", "analytics"})))
	assert.Equal(t, 0, c.intersectionScore(keywordSet([]string{"javascript"})))
}
