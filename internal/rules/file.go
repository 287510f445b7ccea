package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/listenupapp/autosort/internal/domain"
)

// File persists rules as a JSON array ([{"keyword":..,"destination":..}]) or,
// for .yaml/.yml paths, a YAML sequence of the same shape.
type File struct {
	Path string
}

// NewFile returns a persister for path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Load reads the rule list. A missing file is an empty list.
func (f *File) Load() ([]domain.Rule, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Rule{}, nil
		}
		return nil, fmt.Errorf("read rules %s: %w", f.Path, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return []domain.Rule{}, nil
	}

	var rules []domain.Rule
	if f.isYAML() {
		err = yaml.Unmarshal(data, &rules)
	} else {
		err = json.Unmarshal(data, &rules)
	}
	if err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", f.Path, err)
	}
	if rules == nil {
		rules = []domain.Rule{}
	}
	return rules, nil
}

// Save writes the rule list atomically via a temp file and rename.
func (f *File) Save(rules []domain.Rule) error {
	if rules == nil {
		rules = []domain.Rule{}
	}

	var (
		data []byte
		err  error
	)
	if f.isYAML() {
		data, err = yaml.Marshal(rules)
	} else {
		data, err = json.MarshalIndent(rules, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create rules directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".rules-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp rules file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write rules: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync rules: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close rules: %w", err)
	}

	if err := os.Rename(tmpName, f.Path); err != nil {
		return fmt.Errorf("replace rules %s: %w", f.Path, err)
	}
	return nil
}

func (f *File) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(f.Path))
	return ext == ".yaml" || ext == ".yml"
}
