package services

import "fmt"

// TranslationFailedError reports that at least one part of a request came
// back from the authority as an error. Extras carries the authority's error
// attributes verbatim.
type TranslationFailedError struct {
	Extras map[string]string
}

func (e *TranslationFailedError) Error() string {
	return fmt.Sprintf("translation failed: %v", e.Extras)
}

// IncompleteError reports that not all parts of a request have a response
// yet, so the document cannot be reconstructed.
type IncompleteError struct {
	Complete   int
	Incomplete int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("translation incomplete: %d of %d parts translated", e.Complete, e.Complete+e.Incomplete)
}
