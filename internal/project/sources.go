package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/leapstack-labs/docprop/internal/propagate"
	"gopkg.in/yaml.v3"
)

// SourcesFile is the YAML document declaring root entities.
//
//	sources:
//	  - name: raw
//	    tables:
//	      - name: customers
//	        columns:
//	          - name: id
//	            description: Customer key
type SourcesFile struct {
	Version int           `yaml:"version"`
	Sources []SourceGroup `yaml:"sources"`
}

// SourceGroup is one group of source tables, usually a schema.
type SourceGroup struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Tables      []SourceTable  `yaml:"tables"`
	Meta        map[string]any `yaml:"meta"`
}

// SourceTable is one root entity, displayed as "<group>.<member>".
type SourceTable struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Columns     []propagate.Column `yaml:"columns"`
	Meta        map[string]any     `yaml:"meta"`
}

// ParseSources decodes a sources document. Unknown fields are rejected.
// An empty document yields no groups.
func ParseSources(data []byte) (*SourcesFile, error) {
	var sf SourcesFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sf); err != nil {
		if errors.Is(err, io.EOF) {
			return &sf, nil
		}
		return nil, &FrontmatterParseError{Message: err.Error()}
	}

	for _, g := range sf.Sources {
		if g.Name == "" {
			return nil, &FrontmatterParseError{Message: "source group without a name"}
		}
		for _, t := range g.Tables {
			if t.Name == "" {
				return nil, &FrontmatterParseError{Message: fmt.Sprintf("table without a name in source %q", g.Name)}
			}
		}
	}
	return &sf, nil
}
