package store

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// The local store keeps artifacts on the local disk under the root folder,
// the root is expected to be served by a static file layer under the public prefix.
// The layout is organized as follows:
// - `<root>/<rel>` for the artifact file
// - `<prefix>/<rel>` for the public URL

type localStore struct {
	root   string
	prefix string
}

// NewLocalStore returns ArtifactStore on the local disk
func NewLocalStore(root, publicPrefix string) ArtifactStore {
	return &localStore{
		root:   root,
		prefix: "/" + strings.Trim(publicPrefix, "/"),
	}
}

// clean resolves the relative path within the root
func clean(rel string) string {
	return strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(rel)), "/")
}

func (s *localStore) EnsureDir(rel string) error {
	dir := s.Path(rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create folder: %s", dir)
	}
	return nil
}

func (s *localStore) Path(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(clean(rel)))
}

func (s *localStore) PublicURL(rel string) string {
	return path.Join(s.prefix, clean(rel))
}

func (s *localStore) Size(rel string) (int64, error) {
	fi, err := os.Stat(s.Path(rel))
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if fi.IsDir() {
		return 0, errors.Newf("not a file: %s", rel)
	}
	return fi.Size(), nil
}
