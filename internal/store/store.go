// Package store persists captured modules under a storage root: a mapping.json registry from module
// name to record id, and one gzip-compressed JSON record per module in modules/<id>.via.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"

	"github.com/odvcencio/via/pkg/model"
)

const (
	MappingFile = "mapping.json"
	ModulesDir  = "modules"
	RecordExt   = ".via"
)

var (
	ErrModuleNotFound = errors.New("module not found")
	ErrBlobMissing    = errors.New("module record missing")
	ErrInvalidName    = errors.New("invalid module name")
)

// Store is a module registry rooted at a storage directory. Writers are not serialized; the last
// writer's mapping wins.
type Store struct {
	fs   afero.Fs
	root string
}

// Open returns a store rooted at root, creating the directory layout when missing.
func Open(fsys afero.Fs, root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("storage root is empty")
	}
	if err := fsys.MkdirAll(filepath.Join(root, ModulesDir), 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{fs: fsys, root: root}, nil
}

// Root returns the storage root.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) mappingPath() string {
	return filepath.Join(s.root, MappingFile)
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.root, ModulesDir, id+RecordExt)
}

// Mapping loads the registry. A missing registry is an empty mapping.
func (s *Store) Mapping() (model.Mapping, error) {
	data, err := afero.ReadFile(s.fs, s.mappingPath())
	if errors.Is(err, fs.ErrNotExist) {
		return model.Mapping{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	mapping := model.Mapping{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return mapping, nil
	}
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("decode mapping: %w", err)
	}
	return mapping, nil
}

func (s *Store) saveMapping(mapping model.Mapping) error {
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.fs, s.mappingPath(), append(data, '\n'))
}

// Save writes mod's record and registers it under mod.Name. Saving an existing name reuses its id
// and overwrites the record; updated reports that case.
func (s *Store) Save(mod *model.Module) (id string, updated bool, err error) {
	if mod == nil || mod.Deps == nil {
		return "", false, fmt.Errorf("save: module has no files")
	}
	if err := ValidateName(mod.Name); err != nil {
		return "", false, err
	}

	mapping, err := s.Mapping()
	if err != nil {
		return "", false, err
	}
	id, updated = mapping[mod.Name]
	if !updated {
		id = uuid.NewString()
	}

	blob, err := encode(mod)
	if err != nil {
		return "", false, fmt.Errorf("encode module %s: %w", mod.Name, err)
	}
	if err := writeFileAtomic(s.fs, s.recordPath(id), blob); err != nil {
		return "", false, fmt.Errorf("write module %s: %w", mod.Name, err)
	}

	mapping[mod.Name] = id
	if err := s.saveMapping(mapping); err != nil {
		return "", false, fmt.Errorf("write mapping: %w", err)
	}
	return id, updated, nil
}

// Load reads the module registered under name.
func (s *Store) Load(name string) (*model.Module, error) {
	mapping, err := s.Mapping()
	if err != nil {
		return nil, err
	}
	id, ok := mapping[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}

	f, err := s.fs.Open(s.recordPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (%s)", ErrBlobMissing, name, id)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decompress module %s: %w", name, err)
	}
	defer zr.Close()

	var mod model.Module
	if err := json.NewDecoder(zr).Decode(&mod); err != nil {
		return nil, fmt.Errorf("decode module %s: %w", name, err)
	}
	return &mod, nil
}

// Remove unregisters name and deletes its record. A record that is already gone is not an error.
func (s *Store) Remove(name string) error {
	mapping, err := s.Mapping()
	if err != nil {
		return err
	}
	id, ok := mapping[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	if err := s.fs.Remove(s.recordPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove module %s: %w", name, err)
	}
	delete(mapping, name)
	return s.saveMapping(mapping)
}

// Entry is one registered module as reported by List.
type Entry struct {
	Name      string `json:"name" yaml:"name"`
	ID        string `json:"id" yaml:"id"`
	SizeBytes int64  `json:"size_bytes" yaml:"size_bytes"`
	Missing   bool   `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// List returns the registered modules sorted by name.
func (s *Store) List() ([]Entry, error) {
	mapping, err := s.Mapping()
	if err != nil {
		return nil, err
	}
	names := mapping.Names()
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entry := Entry{Name: name, ID: mapping[name]}
		info, err := s.fs.Stat(s.recordPath(entry.ID))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			entry.Missing = true
		case err != nil:
			return nil, err
		default:
			entry.SizeBytes = info.Size()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ValidateName rejects names that cannot be used as a registry key or CLI command.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if name != strings.TrimSpace(name) || strings.ContainsAny(name, " \t\n/\\") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func encode(mod *model.Module) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(mod); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(fsys afero.Fs, name string, data []byte) error {
	if err := fsys.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	tmp := name + ".tmp"
	if err := afero.WriteFile(fsys, tmp, data, 0o644); err != nil {
		return err
	}
	return fsys.Rename(tmp, name)
}
