package credentials

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/cppe-issia/console/sdk/authx"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// fileDocument is the on-disk layout of a FileStore. Both keys live in one
// document so that a single rename replaces them together.
type fileDocument struct {
	Token string          `json:"cppe_token,omitempty"`
	User  json.RawMessage `json:"cppe_user,omitempty"`
}

// FileStore is a Store backed by a single JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a FileStore persisting to path. If path is empty,
// DefaultFilePath is used.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		var err error
		if path, err = DefaultFilePath(); err != nil {
			return nil, err
		}
	}
	return &FileStore{path: path}, nil
}

// DefaultFilePath returns the default location of the credentials file,
// ~/.cppe/credentials.json.
func DefaultFilePath() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating user's home directory")
	}
	return filepath.Join(homeDir, ".cppe", "credentials.json"), nil
}

// Path returns the location of the credentials file.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Save(token string, user authx.User) error {
	userBytes, err := encodeUser(user)
	if err != nil {
		return err
	}
	docBytes, err := json.Marshal(fileDocument{Token: token, User: userBytes})
	if err != nil {
		return errors.Wrap(err, "error marshaling credentials")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "error creating credentials directory %s", dir)
	}
	// Write to a temporary file first and rename it into place so that no
	// reader ever observes a partially written document.
	tmp, err := ioutil.TempFile(dir, ".credentials-*")
	if err != nil {
		return errors.Wrapf(err, "error creating temporary file in %s", dir)
	}
	defer os.Remove(tmp.Name()) // nolint: errcheck
	if _, err := tmp.Write(docBytes); err != nil {
		tmp.Close() // nolint: errcheck
		return errors.Wrapf(err, "error writing to %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "error closing %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return errors.Wrapf(err, "error setting permissions on %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrapf(err, "error writing to %s", f.path)
	}
	return nil
}

func (f *FileStore) Load() (string, *authx.User) {
	doc, ok := f.read()
	if !ok {
		return "", nil
	}
	return doc.Token, decodeUser(doc.User)
}

func (f *FileStore) Token() (string, bool) {
	doc, ok := f.read()
	if !ok || doc.Token == "" {
		return "", false
	}
	return doc.Token, true
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "error deleting %s", f.path)
	}
	return nil
}

func (f *FileStore) read() (fileDocument, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc := fileDocument{}
	docBytes, err := ioutil.ReadFile(f.path)
	if err != nil {
		return doc, false
	}
	if err := json.Unmarshal(docBytes, &doc); err != nil {
		return fileDocument{}, false
	}
	return doc, true
}
