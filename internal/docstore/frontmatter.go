package docstore

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExtractFrontmatter reads a leading YAML front-matter block into a flat
// string map and returns the content that follows it.
func ExtractFrontmatter(content string) (map[string]string, string, error) {
	meta := make(map[string]string)

	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return meta, content, nil
	}

	rest := normalized[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return meta, content, nil
	}

	block := rest[:end]
	body := strings.TrimLeft(rest[end+len("\n---"):], "\n")

	var yamlData map[string]interface{}
	if err := yaml.Unmarshal([]byte(block), &yamlData); err != nil {
		return nil, "", fmt.Errorf("failed to parse YAML frontmatter: %w", err)
	}

	for key, value := range yamlData {
		switch v := value.(type) {
		case nil:
		case string:
			meta[key] = v
		case []interface{}:
			items := make([]string, 0, len(v))
			for _, item := range v {
				items = append(items, fmt.Sprint(item))
			}
			meta[key] = strings.Join(items, ",")
		default:
			meta[key] = fmt.Sprint(v)
		}
	}

	return meta, body, nil
}
