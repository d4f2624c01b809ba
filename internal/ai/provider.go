package ai

import (
	"context"
	"errors"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options bound a single completion call. MaxTokens varies per
// generation kind; Temperature is fixed at 0.7 by callers today.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// ErrUpstream marks any non-success, timeout, or empty response from the
// completion API.
var ErrUpstream = errors.New("upstream model error")

type Provider interface {
	Chat(ctx context.Context, messages []Message, opts Options) (string, error)
}
