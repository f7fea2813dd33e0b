package frontmatter

// Type selects the schema a document's metadata is validated against.
type Type string

// Frontmatter types.
const (
	TypeDoc      Type = "doc"
	TypeConcept  Type = "concept"
	TypeAPI      Type = "api"
	TypeWorkflow Type = "workflow"
)

// Frontmatter is implemented by the four schema structs.
type Frontmatter interface {
	Kind() Type
	// Shared returns the fields every schema carries.
	Shared() *Common
}

// Common holds the fields shared by every schema.
type Common struct {
	Title       string   `yaml:"title,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags"`
	Version     string   `yaml:"version,omitempty"`
	Locale      string   `yaml:"locale,omitempty"`
}

// Doc is the default schema for plain pages.
type Doc struct {
	Common      `yaml:",inline"`
	Keywords    []string `yaml:"keywords,omitempty"`
	Author      string   `yaml:"author,omitempty"`
	PublishDate string   `yaml:"publishDate,omitempty"`
	Section     string   `yaml:"section,omitempty"`
}

// Concept describes a domain entity.
type Concept struct {
	Common          `yaml:",inline"`
	EntityType      string   `yaml:"entity_type"`
	CanonicalName   string   `yaml:"canonical_name"`
	Aliases         []string `yaml:"aliases"`
	RelatedEntities []string `yaml:"related_entities"`
}

// API describes one API operation.
type API struct {
	Common        `yaml:",inline"`
	APIType       string   `yaml:"api_type"`
	OperationID   string   `yaml:"operation_id"`
	Method        string   `yaml:"method,omitempty"`
	Path          string   `yaml:"path,omitempty"`
	Resource      string   `yaml:"resource,omitempty"`
	Capabilities  []string `yaml:"capabilities"`
	SideEffects   []string `yaml:"side_effects"`
	Preconditions []string `yaml:"preconditions"`
	Permissions   []string `yaml:"permissions"`
	RateLimit     string   `yaml:"rate_limit,omitempty"`
}

// Workflow describes a multi-step procedure.
type Workflow struct {
	Common                `yaml:",inline"`
	WorkflowID            string `yaml:"workflow_id"`
	Goal                  string `yaml:"goal"`
	PrimaryEntity         string `yaml:"primary_entity,omitempty"`
	RiskLevel             string `yaml:"risk_level,omitempty"`
	RequiresHumanApproval bool   `yaml:"requires_human_approval"`
}

func (*Doc) Kind() Type      { return TypeDoc }
func (*Concept) Kind() Type  { return TypeConcept }
func (*API) Kind() Type      { return TypeAPI }
func (*Workflow) Kind() Type { return TypeWorkflow }

func (f *Doc) Shared() *Common      { return &f.Common }
func (f *Concept) Shared() *Common  { return &f.Common }
func (f *API) Shared() *Common      { return &f.Common }
func (f *Workflow) Shared() *Common { return &f.Common }

// schema describes how raw metadata is validated for one type.
type schema struct {
	required []string
	defaults map[string]any
	new      func() Frontmatter
}

var schemas = map[Type]schema{
	TypeDoc: {
		defaults: map[string]any{"tags": []any{}},
		new:      func() Frontmatter { return &Doc{} },
	},
	TypeConcept: {
		required: []string{"canonical_name"},
		defaults: map[string]any{
			"entity_type":      "resource",
			"aliases":          []any{},
			"related_entities": []any{},
			"tags":             []any{},
		},
		new: func() Frontmatter { return &Concept{} },
	},
	TypeAPI: {
		required: []string{"operation_id"},
		defaults: map[string]any{
			"api_type":      "http",
			"capabilities":  []any{},
			"side_effects":  []any{},
			"preconditions": []any{},
			"permissions":   []any{},
			"tags":          []any{},
		},
		new: func() Frontmatter { return &API{} },
	},
	TypeWorkflow: {
		required: []string{"workflow_id", "goal"},
		defaults: map[string]any{
			"requires_human_approval": false,
			"tags":                    []any{},
		},
		new: func() Frontmatter { return &Workflow{} },
	},
}
