package domain

// SourceFile is the root of an immutable source tree. Implementations must be
// persistent: every transform returns a new root and shares unchanged subtrees,
// so the engine can detect change by comparing interface identity. A SourceFile
// is never mutated after construction.
type SourceFile interface {
	// FileType is the capability key for this tree variant (e.g. "Gradle").
	// It is also the file.type attribute on emitted metrics.
	FileType() string

	// SourcePath is the path of the file this tree was parsed from.
	SourcePath() string

	// Markers returns the annotations attached to this tree.
	Markers() []Marker

	// Print renders the tree back to source text, byte-for-byte identical to
	// the input when no transform touched it.
	Print() string
}

// Marker is an annotation attached to a tree by a rule. Rules that hit a
// recoverable problem report it through a marker on their returned tree
// instead of an error, so the rest of the run proceeds.
type Marker interface {
	Message() string
}

// Warning is a user-visible, non-fatal marker.
type Warning struct {
	Text string
}

func (w Warning) Message() string { return w.Text }
