package pipeline

import (
	"os"
	"path/filepath"

	"github.com/aviary-ml/aviary/core/model"
	"github.com/aviary-ml/aviary/pkg/errors"
)

// Store persists feature artifacts as gob files under a directory per
// feature kind: <root>/<kind>/<id>.gob. Artifacts are write-once; callers
// check Exists before recomputing.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.NewValueError("NewStore", "empty root directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "pipeline: creating store root %s", dir)
	}
	return &Store{root: dir}, nil
}

// Path returns the artifact path for a feature kind and recording ID.
func (s *Store) Path(kind, id string) string {
	return filepath.Join(s.root, kind, id+".gob")
}

// Exists reports whether the artifact is already on disk.
func (s *Store) Exists(kind, id string) bool {
	_, err := os.Stat(s.Path(kind, id))
	return err == nil
}

// Save writes the artifact. The kind directory is created on first use.
func (s *Store) Save(kind, id string, v interface{}) error {
	dir := filepath.Join(s.root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "pipeline: creating %s", dir)
	}
	if err := model.Save(v, s.Path(kind, id)); err != nil {
		return errors.Wrapf(err, "pipeline: saving artifact %s/%s", kind, id)
	}
	return nil
}

// Load reads the artifact into v, which must be a pointer.
func (s *Store) Load(kind, id string, v interface{}) error {
	if err := model.Load(v, s.Path(kind, id)); err != nil {
		return errors.Wrapf(err, "pipeline: loading artifact %s/%s", kind, id)
	}
	return nil
}

// IDs lists the recording IDs with an artifact of the given kind.
func (s *Store) IDs(kind string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "pipeline: listing %s artifacts", kind)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) == ".gob" {
			ids = append(ids, name[:len(name)-len(".gob")])
		}
	}
	return ids, nil
}
