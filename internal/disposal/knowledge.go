package disposal

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
	"gopkg.in/yaml.v3"
)

//go:embed guidance.yaml
var defaultKnowledgeBase []byte

var ErrInvalidKnowledgeBase = errors.New("invalid disposal knowledge base")

// Entry is the guidance for one category.
type Entry struct {
	Methods  []string `yaml:"methods"`
	Tips     string   `yaml:"tips"`
	Warnings string   `yaml:"warnings"`
}

// KnowledgeBase is an immutable, versioned mapping from category to guidance.
type KnowledgeBase struct {
	Version string
	entries map[domain.Category]Entry
}

type knowledgeBaseDocument struct {
	Version string           `yaml:"version"`
	Entries map[string]Entry `yaml:"entries"`
}

// ParseKnowledgeBase decodes and validates a YAML knowledge base.
func ParseKnowledgeBase(data []byte) (*KnowledgeBase, error) {
	var doc knowledgeBaseDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKnowledgeBase, err)
	}
	if strings.TrimSpace(doc.Version) == "" {
		return nil, fmt.Errorf("%w: version is required", ErrInvalidKnowledgeBase)
	}

	entries := make(map[domain.Category]Entry, len(doc.Entries))
	for key, entry := range doc.Entries {
		category := domain.Category(key)
		if !category.IsValid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidKnowledgeBase, key)
		}
		if len(entry.Methods) == 0 {
			return nil, fmt.Errorf("%w: category %q has no disposal methods", ErrInvalidKnowledgeBase, key)
		}
		entries[category] = Entry{
			Methods:  append([]string(nil), entry.Methods...),
			Tips:     entry.Tips,
			Warnings: entry.Warnings,
		}
	}
	if _, ok := entries[domain.CategoryOther]; !ok {
		return nil, fmt.Errorf("%w: fallback category %q is missing", ErrInvalidKnowledgeBase, domain.CategoryOther)
	}

	return &KnowledgeBase{Version: doc.Version, entries: entries}, nil
}

// DefaultKnowledgeBase returns the knowledge base compiled into the binary.
func DefaultKnowledgeBase() *KnowledgeBase {
	kb, err := ParseKnowledgeBase(defaultKnowledgeBase)
	if err != nil {
		panic(fmt.Sprintf("embedded disposal knowledge base is broken: %v", err))
	}
	return kb
}

// LoadKnowledgeBase reads a knowledge base file from disk.
func LoadKnowledgeBase(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base %s: %w", path, err)
	}
	return ParseKnowledgeBase(data)
}

// Lookup returns the entry for c, falling back to Other.
func (kb *KnowledgeBase) Lookup(c domain.Category) (Entry, bool) {
	if e, ok := kb.entries[c]; ok {
		return e, true
	}
	return kb.entries[domain.CategoryOther], false
}
