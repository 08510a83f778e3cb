package project

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/docprop/internal/propagate"
	"gopkg.in/yaml.v3"
)

// Frontmatter is the YAML block at the top of a model file.
// Unknown fields cause parse errors (use Meta for extensions).
type Frontmatter struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	DependsOn   []string           `yaml:"depends_on"`
	Columns     []propagate.Column `yaml:"columns"`
	Tags        []string           `yaml:"tags"`
	Meta        map[string]any     `yaml:"meta"`
}

// frontmatterPattern matches /*--- ... ---*/ blocks
var frontmatterPattern = regexp.MustCompile(`(?s)^\s*/\*---\s*\n(.*?)\s*---\*/`)

var knownFields = map[string]bool{
	"name":        true,
	"description": true,
	"depends_on":  true,
	"columns":     true,
	"tags":        true,
	"meta":        true,
}

// ExtractFrontmatter parses the frontmatter of a model file.
// A file without frontmatter yields an empty Frontmatter and found=false.
func ExtractFrontmatter(content string) (fm *Frontmatter, found bool, err error) {
	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) < 2 {
		return &Frontmatter{}, false, nil
	}

	fm, err = parseFrontmatterYAML(matches[1])
	if err != nil {
		return nil, true, err
	}
	return fm, true, nil
}

func parseFrontmatterYAML(content string) (*Frontmatter, error) {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(content), &raw); err != nil {
		return nil, &FrontmatterParseError{
			Message: fmt.Sprintf("invalid YAML: %v", err),
		}
	}
	for field := range raw {
		if !knownFields[field] {
			return nil, &UnknownFieldError{Field: field}
		}
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(content), &fm); err != nil {
		return nil, &FrontmatterParseError{
			Message: fmt.Sprintf("failed to parse frontmatter: %v", err),
		}
	}

	for i, c := range fm.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return nil, &FrontmatterParseError{
				Message: fmt.Sprintf("column %d has no name", i+1),
			}
		}
	}
	return &fm, nil
}

// frontmatterLine returns the 1-based line of the first occurrence of needle
// inside content, or 0.
func frontmatterLine(content, needle string) int {
	i := strings.Index(content, needle)
	if i < 0 {
		return 0
	}
	return strings.Count(content[:i], "\n") + 1
}
