package frontmatter

import "fmt"

// ParseError reports a metadata block that could not be read as YAML.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ValidationError reports metadata that does not satisfy its schema.
type ValidationError struct {
	Type    Type
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s frontmatter: field %q: %s", e.Type, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s frontmatter: %s", e.Type, e.Message)
}
