package natvis

import (
	"fmt"
	"strings"
	"sync"
)

// Scope carries the token bindings for a sequence of related
// evaluations: visualizer template parameters (bound by the caller)
// and scratch variables (declared through the evaluator). One Scope
// lives as long as the visualizer context it belongs to.
type Scope struct {
	mu       sync.Mutex
	bindings map[string]string
	declared map[string]struct{} // internal tokens of scratch variables
	counter  int
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{
		bindings: make(map[string]string),
		declared: make(map[string]struct{}),
	}
}

// Bind maps a placeholder name (e.g. "$T1" or "size") to replacement
// text. Later bindings for the same name win.
func (s *Scope) Bind(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[name] = value
}

// nextToken generates the internal token for a scratch variable named
// name. Tokens are valid interpreter identifiers and unique per
// scope.
func (s *Scope) nextToken(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := fmt.Sprintf("$%s_%d", name, s.counter)
	s.counter++
	return token
}

/// bindDeclared records a successfully declared scratch variable:
// expressions mentioning name now substitute to token, and token is
// remembered as interpreter-only.
func (s *Scope) bindDeclared(name, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[name] = token
	s.declared[token] = struct{}{}
}

// Substitute replaces bound placeholder names in expr with their
/// values. The pass is single and textual: replacement text is opaque,
// never rescanned for further placeholders. Names only match whole
// identifiers, so a binding for "i" leaves "index" alone.
func (s *Scope) Substitute(expr string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.bindings) == 0 {
		return expr
	}

	var out strings.Builder
	for i := 0; i < len(expr); {
		c := expr[i]
		if !isIdentStart(c) {
			out.WriteByte(c)
			i++
			continue
		}
		start := i
		for i < len(expr) && isIdentPart(expr[i]) {
			i++
		}
		word := expr[start:i]
		if value, ok := s.bindings[word]; ok {
			out.WriteString(value)
		} else {
			out.WriteString(word)
		}
	}
	return out.String()
}

// UsesDeclared reports whether the substituted expression mentions
// any scratch-variable token. Such expressions only the interpreter
// can evaluate.
func (s *Scope) UsesDeclared(substituted string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.declared) == 0 {
		return false
	}
	for i := 0; i < len(substituted); {
		if !isIdentStart(substituted[i]) {
			i++
			continue
		}
		start := i
		for i < len(substituted) && isIdentPart(substituted[i]) {
			i++
		}
		if _, ok := s.declared[substituted[start:i]]; ok {
			return true
		}
	}
	return false
}
