// Package frontmatter splits a Markdown document into its YAML metadata block
// and body, and classifies the metadata into one of four typed schemas.
package frontmatter

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// legacyAPIPattern matches the older `api: "POST /v1/workspaces"` shorthand.
var legacyAPIPattern = regexp.MustCompile(`(?i)^(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\s+(.+)$`)

// Document is a classified document.
type Document struct {
	Frontmatter Frontmatter
	Body        string
	// Raw is the metadata after legacy migration and defaults, before typing.
	Raw map[string]any
}

// Split separates a leading "---" delimited metadata block from the body.
// It returns ok=false when the content has no metadata block.
func Split(content string) (meta string, body string, ok bool, err error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimPrefix(content, "\ufeff")

	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t") != delimiter {
		return "", content, false, nil
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == delimiter {
			meta = strings.Join(lines[1:i], "\n")
			body = strings.Join(lines[i+1:], "\n")
			return meta, body, true, nil
		}
	}

	return "", "", false, &ParseError{Line: 1, Message: "unterminated frontmatter block"}
}

// Parse splits content and classifies its metadata. A document without a
// metadata block is a doc with empty metadata.
func Parse(content string) (*Document, error) {
	meta, body, _, err := Split(content)
	if err != nil {
		return nil, err
	}

	data := map[string]any{}
	if strings.TrimSpace(meta) != "" {
		var raw any
		if err := yaml.Unmarshal([]byte(meta), &raw); err != nil {
			return nil, &ParseError{Message: fmt.Sprintf("invalid YAML: %v", err)}
		}
		switch m := raw.(type) {
		case map[string]any:
			data = m
		case nil:
		default:
			return nil, &ParseError{Message: fmt.Sprintf("frontmatter must be a mapping, got %T", raw)}
		}
	}

	migrateLegacyAPI(data)

	fm, err := classify(data)
	if err != nil {
		return nil, err
	}

	return &Document{Frontmatter: fm, Body: body, Raw: data}, nil
}

// migrateLegacyAPI rewrites `api: "<METHOD> <path>"` into the api schema
// when no explicit type is given.
func migrateLegacyAPI(data map[string]any) {
	if t, _ := data["type"].(string); t != "" {
		return
	}
	legacy, ok := data["api"].(string)
	if !ok {
		return
	}
	m := legacyAPIPattern.FindStringSubmatch(legacy)
	if m == nil {
		return
	}

	method, path := m[1], m[2]
	data["type"] = string(TypeAPI)
	data["method"] = strings.ToUpper(method)
	data["path"] = path
	if id, _ := data["operation_id"].(string); id == "" {
		data["operation_id"] = DeriveOperationID(method, path)
	}
	if at, _ := data["api_type"].(string); at == "" {
		data["api_type"] = "http"
	}
	delete(data, "api")
}

// DeriveOperationID builds an operation id from an HTTP method and path:
// "POST", "/v1/workspaces/{id}" -> "post_v1_workspaces__id_".
func DeriveOperationID(method, path string) string {
	path = strings.TrimPrefix(path, "/")
	path = strings.NewReplacer("/", "_", "{", "_", "}", "_").Replace(path)
	return strings.ToLower(method) + "_" + path
}

// classify picks the schema from the type field and decodes into it.
// Unrecognised types fall back to doc.
func classify(data map[string]any) (Frontmatter, error) {
	t := TypeDoc
	if s, ok := data["type"].(string); ok {
		if _, known := schemas[Type(s)]; known {
			t = Type(s)
		}
	}
	data["type"] = string(t)

	sc := schemas[t]
	for key, def := range sc.defaults {
		if v, ok := data[key]; !ok || v == nil {
			data[key] = def
		}
	}
	for _, key := range sc.required {
		if v, ok := data[key]; !ok || v == nil {
			return nil, &ValidationError{Type: t, Field: key, Message: "required field is missing"}
		}
	}

	fm := sc.new()
	if err := decode(data, fm); err != nil {
		return nil, &ValidationError{Type: t, Message: err.Error()}
	}
	return fm, nil
}

func decode(data map[string]any, out Frontmatter) error {
	input := make(map[string]any, len(data))
	for k, v := range data {
		if v != nil && k != "type" {
			input[k] = v
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "yaml",
		Squash:  true,
		Result:  out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// KnownFields returns the metadata keys recognised by the schema for t.
func KnownFields(t Type) []string {
	fields := []string{"type", "title", "description", "tags", "version", "locale"}
	switch t {
	case TypeDoc:
		fields = append(fields, "keywords", "author", "publishDate", "section")
	case TypeConcept:
		fields = append(fields, "entity_type", "canonical_name", "aliases", "related_entities")
	case TypeAPI:
		fields = append(fields, "api_type", "operation_id", "method", "path", "resource",
			"capabilities", "side_effects", "preconditions", "permissions", "rate_limit")
	case TypeWorkflow:
		fields = append(fields, "workflow_id", "goal", "primary_entity", "risk_level", "requires_human_approval")
	}
	slices.Sort(fields)
	return fields
}
