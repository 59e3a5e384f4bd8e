package skills

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// Filename is the expected skill definition filename within a skill
// directory, matching the teacher's convention.
const Filename = "SKILL.md"

const frontmatterDelimiter = "---"

type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// parseSkill splits frontmatter from body and validates required fields.
//
// Grounded on internal/skills/parser.go's ParseSkill/splitFrontmatter
// contract (YAML frontmatter fenced by "---" lines, body is everything
// after the closing fence), restructured around a single strings.Split
// over the whole file rather than a line-by-line bufio.Scanner.
func parseSkill(data []byte, source string) (models.SkillEntry, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return models.SkillEntry{}, err
	}

	var meta frontmatter
	if err := yaml.Unmarshal(fm, &meta); err != nil {
		return models.SkillEntry{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta.Name == "" {
		return models.SkillEntry{}, fmt.Errorf("skill name is required")
	}
	if meta.Description == "" {
		return models.SkillEntry{}, fmt.Errorf("skill description is required")
	}

	return models.SkillEntry{
		Name:        meta.Name,
		Description: meta.Description,
		Source:      source,
		Body:        strings.TrimSpace(string(body)),
	}, nil
}

// splitFrontmatter locates the "---"-delimited frontmatter block at the
// start of data and returns it alongside everything after the closing
// fence. The whole file is already in memory by the time this is called,
// so it splits on newlines and walks the resulting slice for the closing
// fence's index rather than re-reading the content through a scanner.
func splitFrontmatter(data []byte) ([]byte, []byte, error) {
	lines := strings.Split(string(data), "\n")

	if strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return nil, nil, fmt.Errorf("missing opening frontmatter delimiter")
	}

	closeAt := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			closeAt = i
			break
		}
	}
	if closeAt == -1 {
		return nil, nil, fmt.Errorf("missing closing frontmatter delimiter")
	}

	fm := strings.Join(lines[1:closeAt], "\n")
	body := strings.Join(lines[closeAt+1:], "\n")
	return []byte(fm), []byte(body), nil
}
