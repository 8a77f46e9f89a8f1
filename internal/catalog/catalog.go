// Package catalog reads exercise catalogs written in YAML.
package catalog

import (
	"alcyxob/fitness-tracker/internal/domain"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type yamlCatalog struct {
	Version   int            `yaml:"version"`
	Exercises []yamlExercise `yaml:"exercises"`
}

type yamlExercise struct {
	Name        string `yaml:"name"`
	MuscleGroup string `yaml:"muscle_group"`
	Equipment   string `yaml:"equipment"`
	Description string `yaml:"description"`
}

// Parse decodes a catalog document. Entries without a name are rejected so a
// typo in the file cannot silently shrink the catalog.
func Parse(r io.Reader) ([]domain.Exercise, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc yamlCatalog
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if doc.Version > 1 {
		return nil, fmt.Errorf("unsupported catalog version %d", doc.Version)
	}

	out := make([]domain.Exercise, 0, len(doc.Exercises))
	for i, e := range doc.Exercises {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		out = append(out, domain.Exercise{
			Name:        name,
			MuscleGroup: strings.TrimSpace(e.MuscleGroup),
			Equipment:   strings.TrimSpace(e.Equipment),
			Description: strings.TrimSpace(e.Description),
		})
	}
	return out, nil
}

// LoadFile parses the catalog at path.
func LoadFile(path string) ([]domain.Exercise, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Default returns the catalog bundled with the binary.
func Default() []domain.Exercise {
	entries, err := Parse(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic("catalog: bundled catalog is invalid: " + err.Error())
	}
	return entries
}
