package credstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/goliatone/go-errors"

	authstate "github.com/goliatone/go-authstate"
)

// File persists credential slots as a small JSON document, the desktop
// analog of browser local storage. Writes replace the whole document.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a store backed by the JSON document at path. The file is
// created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Get(_ context.Context, domain authstate.SessionDomain) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slots, err := f.load()
	if err != nil {
		return "", err
	}

	return slots[domain.Slot()], nil
}

func (f *File) Set(_ context.Context, domain authstate.SessionDomain, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	slots, err := f.load()
	if err != nil {
		return err
	}

	slots[domain.Slot()] = token
	return f.save(slots)
}

func (f *File) Delete(_ context.Context, domain authstate.SessionDomain) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	slots, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := slots[domain.Slot()]; !ok {
		return nil
	}

	delete(slots, domain.Slot())
	return f.save(slots)
}

func (f *File) load() (map[string]string, error) {
	slots := map[string]string{}

	buf, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return slots, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to read credential file")
	}

	if len(buf) == 0 {
		return slots, nil
	}

	if err := json.Unmarshal(buf, &slots); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "credential file is corrupted")
	}

	return slots, nil
}

func (f *File) save(slots map[string]string) error {
	buf, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode credential file")
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create credential directory")
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o600); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to write credential file")
	}

	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to replace credential file")
	}

	return nil
}
