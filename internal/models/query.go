package models

import "fmt"

// ScopeKind selects which part of the corpus a cross-reference search covers.
type ScopeKind int

const (
	// ScopeCurrentBook restricts the search to one book.
	ScopeCurrentBook ScopeKind = iota
	// ScopeSelectedBooks restricts the search to a set of books.
	ScopeSelectedBooks
	// ScopeAllVolumes searches every known volume.
	ScopeAllVolumes
)

// String returns the wire name of the scope kind.
func (k ScopeKind) String() string {
	switch k {
	case ScopeCurrentBook:
		return "book"
	case ScopeSelectedBooks:
		return "selected"
	case ScopeAllVolumes:
		return "all"
	default:
		return fmt.Sprintf("ScopeKind(%d)", int(k))
	}
}

// ParseScopeKind parses the wire name produced by ScopeKind.String.
func ParseScopeKind(s string) (ScopeKind, error) {
	switch s {
	case "book":
		return ScopeCurrentBook, nil
	case "selected":
		return ScopeSelectedBooks, nil
	case "all", "":
		return ScopeAllVolumes, nil
	default:
		return 0, fmt.Errorf("unknown scope %q", s)
	}
}

// Scope is the subset of the corpus a cross-reference search is restricted to.
// Volume is optional for book scopes; when empty, same-named books in every
// volume participate.
type Scope struct {
	Kind   ScopeKind
	Volume string
	Books  []string
}

// CurrentBook returns a scope covering the named book.
func CurrentBook(book string) Scope {
	return Scope{Kind: ScopeCurrentBook, Books: []string{book}}
}

// SelectedBooks returns a scope covering the named books.
func SelectedBooks(books ...string) Scope {
	return Scope{Kind: ScopeSelectedBooks, Books: append([]string(nil), books...)}
}

// AllVolumes returns a scope covering the whole corpus.
func AllVolumes() Scope {
	return Scope{Kind: ScopeAllVolumes}
}

// InVolume returns a copy of s restricted to the named volume.
func (s Scope) InVolume(volume string) Scope {
	s.Volume = volume
	return s
}

// BookSet returns the scope's book names as a set.
func (s Scope) BookSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Books))
	for _, b := range s.Books {
		set[b] = struct{}{}
	}
	return set
}

// CrossReferenceRequest is the wire form of a cross-reference search.
type CrossReferenceRequest struct {
	Query  string   `json:"query"`
	Scope  string   `json:"scope,omitempty"`
	Volume string   `json:"volume,omitempty"`
	Books  []string `json:"books,omitempty"`
}

// ToScope converts the request's scope fields into a Scope. The book scope covers
// the first listed book.
func (r *CrossReferenceRequest) ToScope() (Scope, error) {
	kind, err := ParseScopeKind(r.Scope)
	if err != nil {
		return Scope{}, err
	}
	if kind != ScopeAllVolumes && len(r.Books) == 0 {
		return Scope{}, fmt.Errorf("scope %q requires at least one book", kind)
	}
	var scope Scope
	switch kind {
	case ScopeCurrentBook:
		scope = CurrentBook(r.Books[0])
	case ScopeSelectedBooks:
		scope = SelectedBooks(r.Books...)
	default:
		scope = AllVolumes()
	}
	return scope.InVolume(r.Volume), nil
}

// ProximityRequest is the wire form of a proximity search.
type ProximityRequest struct {
	Term1       string `json:"term1"`
	Term2       string `json:"term2"`
	MaxDistance *int   `json:"max_distance,omitempty"`
}

// FrequencyRequest is the wire form of a book or chapter frequency query.
type FrequencyRequest struct {
	Terms []string `json:"terms"`
	Book  string   `json:"book,omitempty"`
}
