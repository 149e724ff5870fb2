// Package assets resolves model files across GRF archives and loose data directories.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Faultbox/meshadj/pkg/grf"
)

// ErrNotFound is returned when no layer holds the requested file.
var ErrNotFound = errors.New("assets: file not found")

// layer is one place files can come from.
type layer interface {
	Read(name string) ([]byte, error)
	Match(pattern string) []string
	Close() error
}

// Library searches its layers in reverse order: the last added layer has the
// highest priority, so patch archives and loose directories override base data.
type Library struct {
	mu     sync.RWMutex
	layers []layer
	names  []string
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{}
}

// Open builds a library from paths. Directories are added as loose data,
// anything else is opened as a GRF archive.
func Open(paths ...string) (*Library, error) {
	lib := NewLibrary()
	for _, p := range paths {
		var err error
		if info, statErr := os.Stat(p); statErr == nil && info.IsDir() {
			err = lib.AddDir(p)
		} else {
			err = lib.AddArchive(p)
		}
		if err != nil {
			lib.Close()
			return nil, err
		}
	}
	return lib, nil
}

// AddArchive adds a GRF archive.
func (l *Library) AddArchive(p string) error {
	archive, err := grf.Open(p)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", p, err)
	}
	l.add(archive, p)
	return nil
}

// AddDir adds a directory of loose files. Names are slash-separated paths
// relative to dir, lower-cased like archive entries.
func (l *Library) AddDir(dir string) error {
	d, err := newDirLayer(dir)
	if err != nil {
		return fmt.Errorf("indexing directory %s: %w", dir, err)
	}
	l.add(d, dir)
	return nil
}

func (l *Library) add(ly layer, name string) {
	l.mu.Lock()
	l.layers = append(l.layers, ly)
	l.names = append(l.names, name)
	l.mu.Unlock()
}

// Layers returns the layer paths in the order they were added.
func (l *Library) Layers() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.names...)
}

// Read returns a file from the highest-priority layer that has it.
func (l *Library) Read(name string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.layers) - 1; i >= 0; i-- {
		data, err := l.layers[i].Read(name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, grf.ErrNotFound) && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Match returns the sorted, de-duplicated names matching pattern in any layer.
// See grf.Archive.Match for the pattern rules.
func (l *Library) Match(pattern string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]struct{})
	var result []string
	for _, ly := range l.layers {
		for _, name := range ly.Match(pattern) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

// Close closes all archives.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for _, ly := range l.layers {
		if err := ly.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.layers = nil
	l.names = nil
	return errors.Join(errs...)
}

// dirLayer serves loose files. The listing is taken once, when the layer is added.
type dirLayer struct {
	root  string
	files map[string]string // normalized name -> path on disk
}

func newDirLayer(root string) (*dirLayer, error) {
	d := &dirLayer{root: root, files: make(map[string]string)}
	err := filepath.WalkDir(root, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		d.files[normalize(filepath.ToSlash(rel))] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (d *dirLayer) Read(name string) ([]byte, error) {
	p, ok := d.files[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return os.ReadFile(p)
}

func (d *dirLayer) Match(pattern string) []string {
	pattern = strings.ToLower(pattern)
	var result []string
	for name := range d.files {
		if ok, _ := path.Match(pattern, path.Base(name)); ok || strings.Contains(name, pattern) {
			result = append(result, name)
		}
	}
	return result
}

func (d *dirLayer) Close() error {
	return nil
}

func normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
}
