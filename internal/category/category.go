// Package category maps files to destination category folders.
package category

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/listenupapp/autosort/internal/domain"
	"github.com/listenupapp/autosort/internal/errors"
)

// Others is the fallback category for files no rule or extension claims.
const Others = "Others"

// Category is a named destination and the extensions routed to it.
type Category struct {
	Name       string   `json:"name" yaml:"name"`
	Extensions []string `json:"extensions" yaml:"extensions"`
}

// Table is an ordered, immutable category table.
type Table struct {
	categories []Category
	byExt      map[string]string
}

// Defaults returns the built-in category list.
func Defaults() []Category {
	return []Category{
		{Name: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp"}},
		{Name: "Documents", Extensions: []string{".pdf", ".doc", ".docx", ".txt", ".xls", ".xlsx", ".ppt", ".pptx"}},
		{Name: "Videos", Extensions: []string{".mp4", ".mkv", ".mov", ".avi"}},
		{Name: "Music", Extensions: []string{".mp3", ".wav", ".aac"}},
		{Name: "Archives", Extensions: []string{".zip", ".rar", ".tar", ".gz"}},
		{Name: "Scripts", Extensions: []string{".py", ".js", ".sh", ".bat"}},
		{Name: Others},
	}
}

// Default returns a table built from Defaults.
func Default() *Table {
	t, err := NewTable(Defaults())
	if err != nil {
		panic(fmt.Sprintf("default category table: %v", err))
	}
	return t
}

// NewTable validates categories and builds a lookup table. Extensions are
// normalized to lowercase with a leading dot. An extension claimed by two
// categories is rejected. Others is appended when absent and never carries
// extensions of its own.
func NewTable(categories []Category) (*Table, error) {
	t := &Table{byExt: make(map[string]string)}
	seen := make(map[string]bool)
	hasOthers := false

	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, errors.Configf("category name is required")
		}
		if !filepath.IsLocal(name) {
			return nil, errors.Configf("category %q must be a relative folder name", name)
		}
		if seen[strings.ToLower(name)] {
			return nil, errors.Configf("category %q is defined twice", name)
		}
		seen[strings.ToLower(name)] = true

		if name == Others {
			hasOthers = true
			if len(c.Extensions) > 0 {
				return nil, errors.Configf("category %s is the fallback and cannot list extensions", Others)
			}
		}

		exts := make([]string, 0, len(c.Extensions))
		for _, raw := range c.Extensions {
			ext := normalizeExt(raw)
			if ext == "" {
				return nil, errors.Configf("category %q has an empty extension", name)
			}
			if owner, dup := t.byExt[ext]; dup {
				return nil, errors.Configf("extension %s is listed under both %s and %s", ext, owner, name)
			}
			t.byExt[ext] = name
			exts = append(exts, ext)
		}
		t.categories = append(t.categories, Category{Name: name, Extensions: exts})
	}

	if !hasOthers {
		t.categories = append(t.categories, Category{Name: Others})
	}

	return t, nil
}

// fileFormat is the on-disk layout of a category file.
type fileFormat struct {
	Categories []Category `yaml:"categories"`
}

// Load reads a category table from a YAML file. JSON files parse too since
// YAML is a superset.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from operator config
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeConfig, "read category file %s", path)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, errors.CodeConfig, "parse category file %s", path)
	}
	if len(f.Categories) == 0 {
		return nil, errors.Configf("category file %s defines no categories", path)
	}

	return NewTable(f.Categories)
}

// Categories returns a copy of the ordered category list.
func (t *Table) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Extensions: append([]string(nil), c.Extensions...)}
	}
	return out
}

// Names returns the category names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// ForExtension returns the category for an extension, falling back to Others.
func (t *Table) ForExtension(ext string) string {
	if name, ok := t.byExt[normalizeExt(ext)]; ok {
		return name
	}
	return Others
}

// Classify returns the destination for filename. The first rule whose keyword
// occurs in the name (case-insensitive) wins; otherwise the extension decides.
func (t *Table) Classify(filename string, rules []domain.Rule) string {
	name := fold(filename)
	for _, rule := range rules {
		if rule.Keyword == "" {
			continue
		}
		if strings.Contains(name, fold(rule.Keyword)) {
			return rule.Destination
		}
	}

	return t.ForExtension(Ext(filename))
}

// Ext returns the lowercased extension of a file name including the dot.
// Leading dots are part of the name, not an extension separator, so
// ".bashrc" and ".jpg" have no extension.
func Ext(filename string) string {
	base := strings.TrimLeft(filepath.Base(filename), ".")
	ext := filepath.Ext(base)
	if ext == "." {
		return ""
	}
	return strings.ToLower(ext)
}

// fold normalizes to NFC before lowercasing so decomposed names (macOS)
// match keywords typed in composed form.
func fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
