package store

// ArtifactStore is the public storage disk for rendered artifacts.
// Relative paths use forward slashes and can not escape the storage root.
type ArtifactStore interface {
	// EnsureDir creates the folder if it does not exist
	EnsureDir(rel string) error
	// Path returns the filesystem path for the relative path
	Path(rel string) string
	// PublicURL returns the URL path the artifact is served under
	PublicURL(rel string) string
	// Size returns the size of the artifact file
	Size(rel string) (int64, error)
}
