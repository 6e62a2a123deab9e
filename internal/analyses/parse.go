package analyses

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"nextcv/internal/llm"
)

// JSONLocator finds the JSON object inside raw model output.
type JSONLocator func(raw string) (string, bool)

// GreedyBraceSpan returns the text from the first "{" to the last "}".
func GreedyBraceSpan(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// BalancedBraceSpan returns the first complete object starting at the first
// "{", matching braces outside JSON strings.
func BalancedBraceSpan(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

// Parser turns raw completion text into a Result.
type Parser struct {
	// Locate defaults to GreedyBraceSpan.
	Locate JSONLocator
	// Provider is copied into returned errors.
	Provider string
}

// Parse uses the default Parser.
func Parse(raw string, v Variant) (*Result, error) {
	return Parser{}.Parse(raw, v)
}

// Parse locates, decodes and validates the payload for variant v. Nothing is
// returned unless the whole payload matches the schema.
func (p Parser) Parse(raw string, v Variant) (*Result, error) {
	locate := p.Locate
	if locate == nil {
		locate = GreedyBraceSpan
	}
	span, ok := locate(raw)
	if !ok {
		return nil, llm.MalformedError(p.Provider, "no JSON object in response", nil)
	}

	doc, err := decodeStrict(span)
	if err != nil {
		return nil, llm.MalformedError(p.Provider, "invalid JSON", err)
	}

	root := schemaFor(v)
	problems, err := validateAgainst(root, v, span)
	if err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		gerr := llm.NewError(llm.KindSchemaMismatch, p.Provider, "response does not match the requested schema", nil)
		gerr.Fields = problems
		return nil, gerr
	}

	result := &Result{Kind: v.Kind, Flags: rangeFlags(root, doc)}
	pruneUnrequested(root.Fields, doc)
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encode response: %w", err)
	}
	switch v.Kind {
	case KindCareerPath:
		var career CareerAnalysis
		if err := json.Unmarshal(body, &career); err != nil {
			return nil, llm.NewError(llm.KindSchemaMismatch, p.Provider, "decode career analysis", err)
		}
		result.Career = &career
	default:
		var resume ResumeAnalysis
		if err := json.Unmarshal(body, &resume); err != nil {
			return nil, llm.NewError(llm.KindSchemaMismatch, p.Provider, "decode resume analysis", err)
		}
		result.Resume = &resume
	}
	return result, nil
}

// pruneUnrequested drops keys the schema did not ask for, such as a company
// block on a request without a company, so their shape cannot fail the decode.
func pruneUnrequested(fields []field, doc map[string]any) {
	known := make(map[string]field, len(fields))
	for _, f := range fields {
		known[f.Name] = f
	}
	for key, val := range doc {
		f, ok := known[key]
		if !ok {
			delete(doc, key)
			continue
		}
		switch f.Type {
		case tObject:
			if m, ok := val.(map[string]any); ok {
				pruneUnrequested(f.Fields, m)
			}
		case tObjectList:
			if items, ok := val.([]any); ok {
				for _, item := range items {
					if m, ok := item.(map[string]any); ok {
						pruneUnrequested(f.Fields, m)
					}
				}
			}
		}
	}
}

func decodeStrict(span string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(span))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}
	return doc, nil
}

var (
	schemaMu    sync.Mutex
	schemaCache = map[Variant]*gojsonschema.Schema{}
)

func compiledSchema(root field, v Variant) (*gojsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if s, ok := schemaCache[v]; ok {
		return s, nil
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(jsonSchema(root)))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	schemaCache[v] = s
	return s, nil
}

// validateAgainst returns one "path: problem" entry per schema violation.
func validateAgainst(root field, v Variant, span string) ([]string, error) {
	schema, err := compiledSchema(root, v)
	if err != nil {
		return nil, err
	}
	res, err := schema.Validate(gojsonschema.NewStringLoader(span))
	if err != nil {
		return nil, fmt.Errorf("validate response: %w", err)
	}
	if res.Valid() {
		return nil, nil
	}
	problems := make([]string, 0, len(res.Errors()))
	for _, desc := range res.Errors() {
		path := desc.Field()
		if path == "" {
			path = "(root)"
		}
		problems = append(problems, path+": "+desc.Description())
	}
	sort.Strings(problems)
	return problems, nil
}

// rangeFlags reports percentage fields whose value lies outside 0-100.
func rangeFlags(root field, doc map[string]any) []RangeFlag {
	var flags []RangeFlag
	for _, path := range percentPaths(root) {
		val, ok := lookup(doc, path)
		if !ok {
			continue
		}
		num, ok := val.(json.Number)
		if !ok {
			continue
		}
		f, err := num.Float64()
		if err != nil {
			continue
		}
		if f < -maxPercentMagnitude || f > maxPercentMagnitude {
			continue
		}
		if p := Percent(f); !p.InRange() {
			flags = append(flags, RangeFlag{Field: path, Value: int(p)})
		}
	}
	return flags
}

func lookup(doc map[string]any, path string) (any, bool) {
	var cur any = doc
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
