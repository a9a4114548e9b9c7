package ingest

import (
	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer estimates the token count of a text.
type Tokenizer interface {
	Count(text string) uint64
}

// encodingName is the BPE encoding used for estimates (GPT-4 family).
const encodingName = "cl100k_base"

// tiktokenTokenizer counts with a real BPE encoding.
type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenTokenizer returns a cl100k_base tokenizer. Fails when the
// encoding data is unavailable (e.g. offline first run); callers should
// fall back to the heuristic.
func NewTiktokenTokenizer() (Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &tiktokenTokenizer{enc: enc}, nil
}

// Count implements Tokenizer.
func (t *tiktokenTokenizer) Count(text string) uint64 {
	return uint64(len(t.enc.Encode(text, nil, nil)))
}

// HeuristicTokenizer approximates ~4 characters per token.
type HeuristicTokenizer struct{}

// Count implements Tokenizer.
func (HeuristicTokenizer) Count(text string) uint64 {
	return uint64(len(text) / 4)
}

// DefaultTokenizer returns the tiktoken tokenizer when its encoding loads,
// otherwise the heuristic.
func DefaultTokenizer() Tokenizer {
	if t, err := NewTiktokenTokenizer(); err == nil {
		return t
	}
	return HeuristicTokenizer{}
}
