package domain

// GroupArtifact identifies an artifact coordinate in a plugin repository.
type GroupArtifact struct {
	Group    string
	Artifact string
}

// Repository represents a remote plugin repository consulted for metadata.
type Repository struct {
	ID  string // Short identifier used in logs (e.g. "gradle-plugin-portal")
	URI string // Base URI of the repository
}

// RepositoryMetadata is the remote-published version listing for one coordinate.
// Versions preserves the order in which the repository listed them.
type RepositoryMetadata struct {
	Coordinate GroupArtifact
	Versions   []string
}

// PluginDeclaration describes a plugin reference found in (or destined for)
// a build script. Version is empty for a versionless declaration.
type PluginDeclaration struct {
	ID      string
	Version string
}
