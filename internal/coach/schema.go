package coach

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// InputSchema is the JSON Schema advertised for AnalysisRequest.
const InputSchema = `{
  "type": "object",
  "properties": {
    "chat_id": {"type": "string"},
    "model": {"type": "string"},
    "messages": {
      "type": "array",
      "minItems": 2,
      "description": "Provide at least a small conversation",
      "items": {
        "type": "object",
        "properties": {
          "role": {"type": "string", "enum": ["user", "assistant", "system", "tool"]},
          "content": {"type": "string"}
        },
        "required": ["role", "content"]
      }
    },
    "user_comment": {"type": "string"},
    "task_hint": {"type": "string"}
  },
  "required": ["messages"]
}`

// OutputSchema is the JSON Schema advertised for AnalysisResult.
const OutputSchema = `{
  "type": "object",
  "properties": {
    "summary": {"type": "string"},
    "root_causes": {"type": "array", "items": {"type": "string"}},
    "suggested_prompt": {"type": "string"},
    "alternatives": {"type": "array", "items": {"type": "string"}},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1}
  },
  "required": ["summary", "root_causes", "suggested_prompt", "alternatives", "confidence"]
}`

// rawResultSchema checks the shape of untrusted model output. confidence is
// left open here; NormalizeConfidence repairs it afterwards.
const rawResultSchema = `{
  "type": "object",
  "properties": {
    "summary": {"type": "string"},
    "root_causes": {"type": "array", "items": {"type": "string"}},
    "suggested_prompt": {"type": "string"},
    "alternatives": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["summary", "suggested_prompt"]
}`

var (
	validate          = newValidator()
	compiledRawResult = mustCompileSchema("raw_result.json", rawResultSchema)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CompileSchema compiles a JSON Schema document.
func CompileSchema(name, schemaJSON string) (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(schemaJSON), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return sch, nil
}

func mustCompileSchema(name, schemaJSON string) *jsonschema.Schema {
	sch, err := CompileSchema(name, schemaJSON)
	if err != nil {
		panic(err)
	}
	return sch
}

// wire types keep presence information that the domain types drop.
type requestWire struct {
	Messages    []messageWire `json:"messages" validate:"required,dive"`
	ChatID      *string       `json:"chat_id"`
	Model       *string       `json:"model"`
	UserComment *string       `json:"user_comment"`
	TaskHint    *string       `json:"task_hint"`
}

type messageWire struct {
	Role    *string `json:"role" validate:"required"`
	Content *string `json:"content" validate:"required"`
}

// DecodeRequest turns a JSON document into a validated AnalysisRequest.
func DecodeRequest(raw []byte) (*AnalysisRequest, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &ValidationError{Field: "messages", Constraint: "required"}
	}

	var w requestWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, decodeError(err)
	}
	if err := validate.Struct(&w); err != nil {
		return nil, validationError(err)
	}

	req := &AnalysisRequest{
		Messages:    make([]Message, len(w.Messages)),
		ChatID:      w.ChatID,
		Model:       w.Model,
		UserComment: w.UserComment,
		TaskHint:    w.TaskHint,
	}
	for i, m := range w.Messages {
		req.Messages[i] = Message{Role: Role(*m.Role), Content: *m.Content}
	}

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

// ValidateRequest enforces the AnalysisRequest constraints: at least two
// messages, each with a known role.
func ValidateRequest(req *AnalysisRequest) error {
	if req == nil {
		return &ValidationError{Field: "messages", Constraint: "required"}
	}
	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "request", Constraint: "valid", Err: err}
	}

	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	constraint := fe.Tag()
	if fe.Param() != "" {
		constraint += "=" + fe.Param()
	}
	return &ValidationError{Field: field, Constraint: constraint}
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "request"
		}
		return &ValidationError{Field: field, Constraint: "type=" + typeErr.Type.String(), Err: err}
	}
	return &ValidationError{Field: "request", Constraint: "json", Err: err}
}

// ParseResult checks the shape of a repaired model value and converts it to
// an AnalysisResult with a normalized confidence.
func ParseResult(v any) (*AnalysisResult, error) {
	if err := compiledRawResult.Validate(v); err != nil {
		return nil, &OutputValidationError{Field: schemaErrorLocation(err), Err: err}
	}

	m := v.(map[string]any)
	res := &AnalysisResult{
		Summary:         m["summary"].(string),
		RootCauses:      stringList(m["root_causes"]),
		SuggestedPrompt: m["suggested_prompt"].(string),
		Alternatives:    stringList(m["alternatives"]),
	}

	conf, ok := m["confidence"]
	if !ok {
		conf = math.NaN()
	}
	res.Confidence = NormalizeConfidence(conf)

	return res, nil
}

func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.(string))
	}
	return out
}

func schemaErrorLocation(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return ""
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return "/" + strings.Join(ve.InstanceLocation, "/")
}

// NormalizeConfidence coerces v to a number and clamps it into [0,1].
// Non-numeric values become 0.5.
func NormalizeConfidence(v any) float64 {
	f := coerceNumber(v)
	switch {
	case math.IsNaN(f):
		return 0.5
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

func coerceNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		return coerceString(n.String())
	case string:
		return coerceString(n)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}

func coerceString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}
