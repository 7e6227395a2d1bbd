// Package normalize canonicalizes the strings that come from registry
// records and chat messages before they are compared or stored.
//
// Host pipeline
// 1 drop control characters and invalid UTF-8
// 2 NFKC, case fold, width fold
// 3 trim spaces and the trailing root dot
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// transformers are stateful, so each goroutine takes its own chain
var (
	hostPool = sync.Pool{New: func() any {
		return transform.Chain(norm.NFKC, cases.Fold(), width.Fold)
	}}
	textPool = sync.Pool{New: func() any { return norm.NFKC }}
)

func run(p *sync.Pool, s string) string {
	tr := p.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	p.Put(tr)
	if err != nil {
		return s
	}
	return out
}

// Host returns the canonical form of a domain or name server host
func Host(s string) string {
	s = strings.TrimSpace(Sanitize(s))
	if s == "" {
		return ""
	}
	return strings.TrimSuffix(run(&hostPool, s), ".")
}

// Hosts applies Host to every entry, dropping blanks and keeping order
func Hosts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, h := range in {
		if v := Host(h); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Text canonicalizes free text such as a registrant name: NFKC, single spaces, trimmed
func Text(s string) string {
	s = Sanitize(s)
	if s == "" {
		return ""
	}
	return strings.Join(strings.FieldsFunc(run(&textPool, s), unicode.IsSpace), " ")
}

// Command splits a chat message into a folded command and its argument.
// "/Link@djnic_bot  ABC" yields ("/link", "ABC"). ok is false when the text is not a command.
func Command(text string) (cmd, arg string, ok bool) {
	text = strings.TrimSpace(Sanitize(text))
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		head, rest = text[:i], text[i:]
	}
	head, _, _ = strings.Cut(head, "@")
	return cases.Fold().String(head), strings.TrimSpace(rest), true
}
