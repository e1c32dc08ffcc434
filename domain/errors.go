package domain

import "fmt"

// MetadataUnavailableError reports that no configured repository could answer
// a metadata request. Rules treat it as recoverable: they annotate the tree
// with a warning instead of failing the run.
type MetadataUnavailableError struct {
	Coordinate GroupArtifact
	Err        error
}

func (e *MetadataUnavailableError) Error() string {
	return fmt.Sprintf(
		"metadata unavailable for %s:%s: %v",
		e.Coordinate.Group, e.Coordinate.Artifact, e.Err,
	)
}

func (e *MetadataUnavailableError) Unwrap() error { return e.Err }
