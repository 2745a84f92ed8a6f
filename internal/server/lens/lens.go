// Package lens defines the pluggable document lens: the component that
// knows how to pull translatable content out of a domain-specific document
// format and how to put translated content back in. The work-queue treats
// the lens as opaque; domain lenses (e.g. for clinical document formats)
// implement this interface outside the server.
package lens

// Translatable is one chunk of translatable content tagged with the format
// the external authority should interpret it as.
type Translatable struct {
	Format  string
	Content []byte
}

// Lens extracts translatable chunks from a raw document and injects their
// translations back into it.
type Lens interface {
	Extract(document []byte) ([]Translatable, error)
	Inject(document []byte, translated []Translatable, toLang string) ([]byte, error)
}
