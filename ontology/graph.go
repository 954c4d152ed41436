package ontology

import (
	"slices"
	"strings"
	"sync"
)

// Term is one vocabulary entry.
type Term struct {
	ID       string
	Name     string
	Parents  []string
	Obsolete bool
}

// Set is a read-only set of accessions.
type Set map[string]struct{}

// Has reports whether accession is in the set.
func (s Set) Has(accession string) bool {
	_, ok := s[accession]
	return ok
}

// Sorted returns the accessions in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for acc := range s {
		out = append(out, acc)
	}
	slices.Sort(out)
	return out
}

// Graph is an immutable is_a hierarchy. Descendant sets are computed on
// first use and memoized; a Graph is safe for concurrent use.
type Graph struct {
	version  string
	terms    map[string]*Term
	children map[string][]string

	mu          sync.Mutex
	descendants map[string]Set
}

func newGraph(version string, terms map[string]*Term) *Graph {
	children := make(map[string][]string)
	for id, term := range terms {
		for _, parent := range term.Parents {
			children[parent] = append(children[parent], id)
		}
	}
	for parent := range children {
		slices.Sort(children[parent])
	}
	return &Graph{
		version:     version,
		terms:       terms,
		children:    children,
		descendants: make(map[string]Set),
	}
}

// Version returns the data-version header of the source document.
func (g *Graph) Version() string {
	return g.version
}

// Len returns the number of terms.
func (g *Graph) Len() int {
	return len(g.terms)
}

// Term returns the term with the given accession.
func (g *Graph) Term(accession string) (Term, bool) {
	t, ok := g.terms[accession]
	if !ok {
		return Term{}, false
	}
	return *t, true
}

// Has reports whether the graph defines accession.
func (g *Graph) Has(accession string) bool {
	_, ok := g.terms[accession]
	return ok
}

// DescendantsOf returns every accession reachable from accession through
// is_a edges, excluding accession itself. The returned set is shared and
// must not be modified.
func (g *Graph) DescendantsOf(accession string) Set {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.descendants[accession]; ok {
		return s
	}

	out := make(Set)
	stack := slices.Clone(g.children[accession])
	for len(stack) > 0 {
		n := len(stack) - 1
		id := stack[n]
		stack = stack[:n]
		if _, seen := out[id]; seen || id == accession {
			continue
		}
		out[id] = struct{}{}
		stack = append(stack, g.children[id]...)
	}
	g.descendants[accession] = out
	return out
}

// Prefix returns the namespace prefix of an accession ("MS" for "MS:1000511").
func Prefix(accession string) string {
	prefix, _, ok := strings.Cut(accession, ":")
	if !ok {
		return ""
	}
	return prefix
}
