// Package csp assembles Content-Security-Policy header values. The API
// serves JSON only, so the shipped policy locks everything down.
package csp

import "strings"

// Builder accumulates CSP directives. Directives render in the order they
// were first set. Not safe for concurrent use.
type Builder struct {
	order   []string
	sources map[string][]string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{sources: make(map[string][]string)}
}

func (b *Builder) set(directive string, sources []string) *Builder {
	if _, ok := b.sources[directive]; !ok {
		b.order = append(b.order, directive)
	}
	b.sources[directive] = sources
	return b
}

// DefaultSrc sets the default-src fallback directive.
func (b *Builder) DefaultSrc(sources ...string) *Builder {
	return b.set("default-src", sources)
}

// ConnectSrc sets the connect-src directive, which covers fetch, XHR,
// WebSocket and EventSource targets.
func (b *Builder) ConnectSrc(sources ...string) *Builder {
	return b.set("connect-src", sources)
}

// FrameAncestors sets the frame-ancestors directive, which controls who
// may embed the response.
func (b *Builder) FrameAncestors(sources ...string) *Builder {
	return b.set("frame-ancestors", sources)
}

// Build renders the policy string, for example
// "default-src 'none'; connect-src 'self'". Directives set with no
// sources are skipped.
func (b *Builder) Build() string {
	parts := make([]string, 0, len(b.order))
	for _, directive := range b.order {
		srcs := b.sources[directive]
		if len(srcs) == 0 {
			continue
		}
		parts = append(parts, directive+" "+strings.Join(srcs, " "))
	}
	return strings.Join(parts, "; ")
}

// APIPolicy returns the policy applied to every response: JSON endpoints
// load no content of any kind.
func APIPolicy() string {
	return NewBuilder().DefaultSrc("'none'").Build()
}
