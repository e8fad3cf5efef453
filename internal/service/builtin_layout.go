package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Section describes one block of the built-in report layout. Sections with an
// empty Flag are always rendered; the rest are gated by the matching
// ExportSettings inclusion flag.
type Section struct {
	Key      string    `json:"key"`
	Title    string    `json:"title"`
	Flag     string    `json:"flag,omitempty"`
	Subjects []Subject `json:"subjects,omitempty"`
}

// Subject pairs a canonical subject code with its display title.
type Subject struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// Section keys of the built-in layout, in render order.
const (
	SectionHeader    = "header"
	SectionBasicInfo = "basic_info"
	SectionGrades    = "grades"
	SectionComment   = "comment"
	SectionSignature = "signature"
)

// builtinLayoutJSON is the bundled default layout. It is validated against
// builtinLayoutSchema at startup so a bad edit fails fast instead of
// producing half-rendered documents.
const builtinLayoutJSON = `{
  "sections": [
    {"key": "header", "title": ""},
    {"key": "basic_info", "title": "Basic Information", "flag": "include_basic_info"},
    {"key": "grades", "title": "Grades", "flag": "include_grades", "subjects": [
      {"code": "chinese", "title": "Chinese"},
      {"code": "math", "title": "Mathematics"},
      {"code": "english", "title": "English"},
      {"code": "science", "title": "Science"},
      {"code": "morality", "title": "Morality and Society"},
      {"code": "pe", "title": "Physical Education"},
      {"code": "music", "title": "Music"},
      {"code": "art", "title": "Art"}
    ]},
    {"key": "comment", "title": "Teacher's Comment", "flag": "include_comments"},
    {"key": "signature", "title": ""}
  ]
}`

const builtinLayoutSchema = `{
  "type": "object",
  "required": ["sections"],
  "properties": {
    "sections": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["key"],
        "properties": {
          "key": {"enum": ["header", "basic_info", "grades", "comment", "signature"]},
          "title": {"type": "string"},
          "flag": {"type": "string", "pattern": "^include_[a-z_]+$"},
          "subjects": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["code", "title"],
              "properties": {
                "code": {"type": "string", "minLength": 1},
                "title": {"type": "string", "minLength": 1}
              }
            }
          }
        }
      }
    }
  }
}`

type builtinLayout struct {
	Sections []Section `json:"sections"`
}

// loadBuiltinLayout parses and schema-validates the bundled layout.
func loadBuiltinLayout() ([]Section, error) {
	schema, err := jsonschema.CompileString("builtin_layout.schema.json", builtinLayoutSchema)
	if err != nil {
		return nil, fmt.Errorf("compiling layout schema: %w", err)
	}

	var document interface{}
	if err := json.Unmarshal([]byte(builtinLayoutJSON), &document); err != nil {
		return nil, fmt.Errorf("parsing builtin layout: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return nil, fmt.Errorf("builtin layout does not match schema: %w", err)
	}

	var layout builtinLayout
	if err := json.Unmarshal([]byte(builtinLayoutJSON), &layout); err != nil {
		return nil, fmt.Errorf("decoding builtin layout: %w", err)
	}

	return layout.Sections, nil
}

// sectionEnabled resolves a section's inclusion flag against the settings.
func sectionEnabled(section Section, flags map[string]bool) bool {
	if strings.TrimSpace(section.Flag) == "" {
		return true
	}
	return flags[section.Flag]
}
