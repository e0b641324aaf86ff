// Package format parses prompt format strings into an immutable token
// sequence and renders status records through it. Rendering is a pure
// function; parsing happens once per invocation.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dvidx/vcsprompt/internal/domain"
)

// Placeholder tokens understood in a format string. Anything else after
// a '%' is either passed through literally or rejected, depending on the
// strict flag given to Parse.
//
//	%n  backend name (or configured symbol)
//	%b  branch
//	%r  revision
//	%p  display path
//	%u  upstream
//	%A  commits ahead of upstream (hidden at zero)
//	%B  commits behind upstream (hidden at zero)
//	%m  dirty marker
//	%o  in-progress operations
//	%%  literal percent
type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenName
	tokenBranch
	tokenRevision
	tokenPath
	tokenUpstream
	tokenAhead
	tokenBehind
	tokenDirty
	tokenOperations
)

type token struct {
	kind tokenKind
	text string // literal text, or the raw token for diagnostics
}

// Spec is a parsed format string. It is immutable after Parse.
type Spec struct {
	tokens []token
}

var placeholders = map[byte]tokenKind{
	'n': tokenName,
	'b': tokenBranch,
	'r': tokenRevision,
	'p': tokenPath,
	'u': tokenUpstream,
	'A': tokenAhead,
	'B': tokenBehind,
	'm': tokenDirty,
	'o': tokenOperations,
}

// Parse scans a format string into a Spec. In strict mode an
// unrecognized placeholder is an error; otherwise it is kept as literal
// text. Parse never panics on any input.
func Parse(s string, strict bool) (*Spec, error) {
	spec := &Spec{}
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			spec.tokens = append(spec.tokens, token{kind: tokenLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			lit.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			// Trailing percent with nothing to expand.
			lit.WriteByte('%')
			break
		}
		i++
		c := s[i]
		if c == '%' {
			lit.WriteByte('%')
			continue
		}
		kind, ok := placeholders[c]
		if !ok {
			if strict {
				return nil, fmt.Errorf("unrecognized placeholder %%%c in format string", c)
			}
			lit.WriteByte('%')
			lit.WriteByte(c)
			continue
		}
		flush()
		spec.tokens = append(spec.tokens, token{kind: kind, text: "%" + string(c)})
	}
	flush()
	return spec, nil
}

// Options controls rendering of placeholder tokens.
type Options struct {
	// DirtyMarker is emitted for %m when the tree is dirty.
	DirtyMarker string
	// UnknownMarker is emitted for %m when the state is unknown and
	// ShowUnknown is set.
	UnknownMarker string
	// ShowUnknown renders UnknownMarker instead of nothing for an
	// unknown dirty state.
	ShowUnknown bool
	// AheadMarker prefixes the %A count.
	AheadMarker string
	// BehindMarker prefixes the %B count.
	BehindMarker string
	// Symbols overrides the %n rendering per backend; the backend name
	// is used when no symbol is configured.
	Symbols map[domain.Kind]string
	// Style optionally colorizes fields. Nil renders plain text.
	Style *Style
}

// Render substitutes rec's fields into the spec. Absent fields render as
// empty strings; the dirty token renders only per the Options policy.
func (s *Spec) Render(rec *domain.StatusRecord, opts Options) string {
	var out strings.Builder
	style := opts.Style
	for _, t := range s.tokens {
		switch t.kind {
		case tokenLiteral:
			out.WriteString(t.text)
		case tokenName:
			name := string(rec.Kind)
			if sym, ok := opts.Symbols[rec.Kind]; ok && sym != "" {
				name = sym
			}
			out.WriteString(style.name(name))
		case tokenBranch:
			out.WriteString(style.branch(rec.Branch))
		case tokenRevision:
			out.WriteString(style.revision(rec.Revision))
		case tokenPath:
			out.WriteString(rec.Path)
		case tokenUpstream:
			out.WriteString(style.upstream(rec.Upstream))
		case tokenAhead:
			if d := rec.Divergence; d != nil && d.Ahead > 0 {
				out.WriteString(opts.AheadMarker + strconv.Itoa(d.Ahead))
			}
		case tokenBehind:
			if d := rec.Divergence; d != nil && d.Behind > 0 {
				out.WriteString(opts.BehindMarker + strconv.Itoa(d.Behind))
			}
		case tokenDirty:
			switch rec.Dirty {
			case domain.Dirty:
				out.WriteString(style.dirty(opts.DirtyMarker))
			case domain.DirtyUnknown:
				if opts.ShowUnknown {
					out.WriteString(style.dirty(opts.UnknownMarker))
				}
			}
		case tokenOperations:
			for i, op := range rec.Operations {
				if i > 0 {
					out.WriteString("|")
				}
				out.WriteString(style.operation(op))
			}
		}
	}
	return out.String()
}
