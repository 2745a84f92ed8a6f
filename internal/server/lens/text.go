package lens

import "fmt"

// TextLens is the trivial lens: the whole document is one plain-text part.
// It keeps the server usable without a domain-specific lens.
type TextLens struct{}

func NewTextLens() *TextLens {
	return &TextLens{}
}

func (l *TextLens) Extract(document []byte) ([]Translatable, error) {
	return []Translatable{{Format: "txt", Content: document}}, nil
}

func (l *TextLens) Inject(document []byte, translated []Translatable, toLang string) ([]byte, error) {
	if len(translated) != 1 {
		return nil, fmt.Errorf("text lens expects exactly one part, got %d", len(translated))
	}
	if translated[0].Format != "txt" {
		return nil, fmt.Errorf("text lens cannot inject format %q", translated[0].Format)
	}
	return translated[0].Content, nil
}
