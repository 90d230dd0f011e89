// Package catalog holds the static corpus of vulnerability templates
// and scores target content against it. The catalog is read-only once
// loaded and safe for unsynchronized concurrent reads.
package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bughunter/bughunter/internal/domain/scan"
	"github.com/bughunter/bughunter/internal/domain/template"
)

// templateDTO mirrors the nuclei-style YAML template layout on disk.
type templateDTO struct {
	ID   string `yaml:"id"`
	Info struct {
		Name           string `yaml:"name"`
		Severity       string `yaml:"severity"`
		Description    string `yaml:"description"`
		Tags           string `yaml:"tags"`
		Classification struct {
			CVSSScore float64 `yaml:"cvss-score"`
		} `yaml:"classification"`
	} `yaml:"info"`
	Matchers []template.Matcher `yaml:"matchers"`
}

// Catalog is the loaded template corpus.
type Catalog struct {
	templates []template.Template
	byID      map[string]int
}

// Load reads every .yaml/.yml template under dir. The template's
// category is the name of its containing directory. Files that fail to
// parse or lack an id are skipped; a directory with no valid templates
// yields an empty catalog, not an error.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int)}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}

		var dto templateDTO
		if err := yaml.Unmarshal(data, &dto); err != nil || dto.ID == "" {
			return nil
		}

		severity := scan.Severity(strings.ToLower(dto.Info.Severity))
		if !severity.IsValid() {
			severity = scan.SeverityInfo
		}

		var tags []string
		if dto.Info.Tags != "" {
			for _, tag := range strings.Split(dto.Info.Tags, ",") {
				tags = append(tags, strings.TrimSpace(tag))
			}
		}

		c.add(template.Template{
			ID:          dto.ID,
			Category:    filepath.Base(filepath.Dir(path)),
			Severity:    severity,
			Name:        dto.Info.Name,
			Description: dto.Info.Description,
			Tags:        tags,
			CVSSScore:   dto.Info.Classification.CVSSScore,
			Matchers:    dto.Matchers,
			Path:        path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load template catalog: %w", err)
	}

	c.sortTemplates()
	return c, nil
}

// NewFromTemplates builds a catalog from an in-memory template list.
func NewFromTemplates(templates []template.Template) *Catalog {
	c := &Catalog{byID: make(map[string]int)}
	for _, t := range templates {
		c.add(t)
	}
	c.sortTemplates()
	return c
}

func (c *Catalog) add(t template.Template) {
	if _, exists := c.byID[t.ID]; exists {
		return
	}
	c.byID[t.ID] = len(c.templates)
	c.templates = append(c.templates, t)
}

// sortTemplates orders the corpus by severity descending then id
// ascending so every listing is deterministic.
func (c *Catalog) sortTemplates() {
	sort.SliceStable(c.templates, func(i, j int) bool {
		if c.templates[i].Severity.Rank() != c.templates[j].Severity.Rank() {
			return c.templates[i].Severity.Rank() > c.templates[j].Severity.Rank()
		}
		return c.templates[i].ID < c.templates[j].ID
	})
	for i, t := range c.templates {
		c.byID[t.ID] = i
	}
}

// Len returns the number of loaded templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Get retrieves a template by id.
func (c *Catalog) Get(id string) (template.Template, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return template.Template{}, false
	}
	return c.templates[idx], true
}

// All returns the full corpus in catalog order.
func (c *Catalog) All() []template.Template {
	out := make([]template.Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Search filters templates by a case-insensitive substring match on id
// and description, with optional exact category and severity filters.
// Results keep the catalog ordering: severity descending, id ascending.
func (c *Catalog) Search(query, category string, severity scan.Severity) []template.Template {
	query = strings.ToLower(query)

	var results []template.Template
	for _, t := range c.templates {
		if category != "" && t.Category != category {
			continue
		}
		if severity != "" && t.Severity != severity {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.ID), query) &&
			!strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}
		results = append(results, t)
	}
	return results
}
