package enrich

import "sync/atomic"

// TokenPool is the process-wide, read-mostly credential pool. Rotation is a
// single atomic increment; no locks on the hot path.
type TokenPool struct {
	tokens  []string
	counter atomic.Uint64
}

// NewTokenPool creates a pool over the ordered token list. An empty list is
// valid: Next then returns "" and calls go out unauthenticated.
func NewTokenPool(tokens []string) *TokenPool {
	return &TokenPool{tokens: tokens}
}

// Next returns the next token in round-robin order.
func (p *TokenPool) Next() string {
	if len(p.tokens) == 0 {
		return ""
	}
	n := p.counter.Add(1) - 1
	return p.tokens[n%uint64(len(p.tokens))]
}

// Size returns the number of credentials in the pool.
func (p *TokenPool) Size() int {
	return len(p.tokens)
}
