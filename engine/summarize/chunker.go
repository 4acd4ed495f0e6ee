package summarize

import (
	"fmt"
	"unicode"

	"github.com/tncscanner/condense/engine/document"
)

// BuildChunks packs sentences into chunks whose estimated token count stays
// at or under tokenLimit, preserving order. A sentence is never split
// across chunks, with one exception: a single sentence that alone exceeds
// the limit is hard-split into word windows of at most tokenLimit words,
// each window becoming its own chunk. Concatenating all chunks in order
// reproduces the input sentence sequence exactly (word-for-word for the
// oversized-sentence windows).
func BuildChunks(sentences []document.Sentence, tokenLimit int) ([]Chunk, error) {
	if tokenLimit <= 0 {
		return nil, fmt.Errorf("summarize: chunk token limit must be positive, got %d: %w",
			tokenLimit, document.ErrInvalidConfig)
	}

	var chunks []Chunk
	var cur []document.Sentence
	curTokens := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Sentences: cur, Tokens: curTokens})
		cur, curTokens = nil, 0
	}

	for _, s := range sentences {
		tokens := s.Tokens()
		if tokens > tokenLimit {
			flush()
			for _, w := range splitOversized(s, tokenLimit) {
				chunks = append(chunks, Chunk{
					Index:     len(chunks),
					Sentences: []document.Sentence{w},
					Tokens:    w.Tokens(),
				})
			}
			continue
		}
		if curTokens+tokens > tokenLimit {
			flush()
		}
		cur = append(cur, s)
		curTokens += tokens
	}
	flush()
	return chunks, nil
}

// splitOversized splits a sentence exceeding the token limit into word
// windows of at most limit words each, keeping byte offsets into the
// parent document. No word is ever cut in half.
func splitOversized(s document.Sentence, limit int) []document.Sentence {
	type span struct{ start, end int }
	var words []span

	inWord := false
	wordStart := 0
	for i, r := range s.Text {
		if unicode.IsSpace(r) {
			if inWord {
				words = append(words, span{wordStart, i})
				inWord = false
			}
			continue
		}
		if !inWord {
			wordStart = i
			inWord = true
		}
	}
	if inWord {
		words = append(words, span{wordStart, len(s.Text)})
	}

	var out []document.Sentence
	for i := 0; i < len(words); i += limit {
		last := i + limit - 1
		if last >= len(words) {
			last = len(words) - 1
		}
		start, end := words[i].start, words[last].end
		out = append(out, document.Sentence{
			Text:  s.Text[start:end],
			Start: s.Start + start,
			End:   s.Start + end,
		})
	}
	return out
}
