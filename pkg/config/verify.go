package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema []byte

// schemaNode is the subset of json schema keywords checked by verify
type schemaNode struct {
	Ref        string                 `json:"$ref"`
	Defs       map[string]*schemaNode `json:"$defs"`
	Type       string                 `json:"type"`
	Properties map[string]*schemaNode `json:"properties"`
	Required   []string               `json:"required"`
	Minimum    *json.Number           `json:"minimum"`
}

// VerifyAgainstEmbeddedSchema checks the config against the embedded JSON schema:
// required properties present, types of scalars and numeric minimums
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	return verifySchema(embeddedSchema, cfg)
}

func verifySchema(schemaData []byte, cfg *Config) error {
	var root schemaNode
	if err := json.Unmarshal(schemaData, &root); err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}

	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(configData))
	dec.UseNumber()
	var configMap map[string]any
	if err := dec.Decode(&configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	var errs []string
	root.check("", configMap, root.Defs, &errs)
	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (n *schemaNode) resolve(defs map[string]*schemaNode) *schemaNode {
	for n != nil && n.Ref != "" {
		n = defs[strings.TrimPrefix(n.Ref, "#/$defs/")]
	}
	return n
}

func (n *schemaNode) check(path string, value any, defs map[string]*schemaNode, errs *[]string) {
	node := n.resolve(defs)
	if node == nil {
		*errs = append(*errs, fmt.Sprintf("%s: unresolved schema reference", path))
		return
	}

	switch node.Type {
	case "object", "":
		obj, ok := value.(map[string]any)
		if !ok {
			if node.Type == "object" {
				*errs = append(*errs, fmt.Sprintf("%s: expected object", path))
			}
			return
		}
		for _, req := range node.Required {
			if _, found := obj[req]; !found {
				*errs = append(*errs, fmt.Sprintf("%s: missing required %s", path, req))
			}
		}
		for name, prop := range node.Properties {
			if v, found := obj[name]; found {
				prop.check(strings.TrimPrefix(path+"."+name, "."), v, defs, errs)
			}
		}
	case "integer", "number":
		num, ok := value.(json.Number)
		if !ok {
			*errs = append(*errs, fmt.Sprintf("%s: expected %s", path, node.Type))
			return
		}
		if node.Minimum == nil {
			return
		}
		v, err1 := num.Float64()
		minVal, err2 := node.Minimum.Float64()
		if err1 == nil && err2 == nil && v < minVal {
			*errs = append(*errs, fmt.Sprintf("%s: %s is less than minimum %s", path, num, node.Minimum.String()))
		}
	case "string":
		if _, ok := value.(string); !ok {
			*errs = append(*errs, fmt.Sprintf("%s: expected string", path))
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			*errs = append(*errs, fmt.Sprintf("%s: expected boolean", path))
		}
	}
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
