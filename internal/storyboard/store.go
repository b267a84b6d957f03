package storyboard

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store persists specs as JSON files in a project directory so an editing
// session can be resumed.
type Store struct {
	Dir string
}

// NewStore creates the project directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create spec directory: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Save writes the spec under a timestamped name and returns the path.
func (st *Store) Save(s *Spec) (string, error) {
	data, err := s.Encode()
	if err != nil {
		return "", fmt.Errorf("encode spec: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(st.Dir, fmt.Sprintf("spec_%s.json", timestamp))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write spec: %w", err)
	}
	return path, nil
}

// Load reads a spec from a JSON file.
func (st *Store) Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// FindLatest returns the most recently modified spec file in the store.
func (st *Store) FindLatest() (string, error) {
	entries, err := os.ReadDir(st.Dir)
	if err != nil {
		return "", fmt.Errorf("read spec directory: %w", err)
	}

	var specs []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			specs = append(specs, filepath.Join(st.Dir, entry.Name()))
		}
	}
	if len(specs) == 0 {
		return "", fmt.Errorf("no spec files found in %s", st.Dir)
	}

	sort.Slice(specs, func(i, j int) bool {
		infoI, _ := os.Stat(specs[i])
		infoJ, _ := os.Stat(specs[j])
		return infoI.ModTime().After(infoJ.ModTime())
	})

	return specs[0], nil
}

// NewRunDir creates a unique directory for one export run's artifacts.
func NewRunDir(base string) (string, error) {
	id := uuid.NewString()[:8]
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	dir := filepath.Join(base, fmt.Sprintf("run_%s_%s", timestamp, id))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create run directory: %w", err)
	}
	return dir, nil
}
