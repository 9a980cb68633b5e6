package sym

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ============================================================
// Cross-format input
// ============================================================
//
// Converters from JSON, YAML and TOML to Values, backing the CLI's
// --from-json/--from-yaml/--from-toml flags. Integers stay integers when
// the source format distinguishes them; TOML datetimes become strings.

// FromJSON converts JSON text to a Value, preserving object key order.
func FromJSON(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("JSON parse error: trailing data after value")
	}
	return v, nil
}

func decodeJSON(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var entries []ObjectEntry
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				val, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				entries = append(entries, ObjectEntry{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil { // closing }
				return nil, err
			}
			return Object(entries...), nil
		case '[':
			var items []*Value
			for dec.More() {
				elem, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, elem)
			}
			if _, err := dec.Token(); err != nil { // closing ]
				return nil, err
			}
			return Array(items...), nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case nil:
		return Null(), nil
	default:
		return nil, fmt.Errorf("unexpected JSON token %v", tok)
	}
}

// FromYAML converts YAML text to a Value, preserving mapping key order.
// Non-string mapping keys are stringified; keys that cannot be
// stringified are dropped.
func FromYAML(data []byte) (*Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return Null(), nil
	}
	v, err := yamlToValue(root.Content[0])
	if err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	return v, nil
}

func yamlToValue(n *yaml.Node) (*Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return yamlToValue(n.Content[0])

	case yaml.AliasNode:
		return yamlToValue(n.Alias)

	case yaml.SequenceNode:
		items := make([]*Value, 0, len(n.Content))
		for _, elem := range n.Content {
			v, err := yamlToValue(elem)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return Array(items...), nil

	case yaml.MappingNode:
		var entries []ObjectEntry
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, ok := yamlKeyString(n.Content[i])
			if !ok {
				continue
			}
			v, err := yamlToValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			entries = append(entries, ObjectEntry{Key: key, Value: v})
		}
		return Object(entries...), nil

	case yaml.ScalarNode:
		return yamlScalarToValue(n), nil

	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d", n.Kind)
	}
}

func yamlKeyString(n *yaml.Node) (string, bool) {
	if n.Kind != yaml.ScalarNode {
		return "", false
	}
	return n.Value, true
}

func yamlScalarToValue(n *yaml.Node) *Value {
	switch n.Tag {
	case "!!null":
		return Null()
	case "!!bool":
		if b, err := strconv.ParseBool(n.Value); err == nil {
			return Bool(b)
		}
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return Int(i)
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return Float(f)
		}
	}
	return Str(n.Value)
}

// FromTOML converts TOML text to a Value. Tables emit their keys in
// sorted order, matching the original implementation's table semantics;
// datetimes become strings.
func FromTOML(data []byte) (*Value, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("TOML parse error: %w", err)
	}
	v, err := tomlToValue(raw)
	if err != nil {
		return nil, fmt.Errorf("TOML parse error: %w", err)
	}
	return v, nil
}

func tomlToValue(v any) (*Value, error) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]ObjectEntry, 0, len(keys))
		for _, k := range keys {
			val, err := tomlToValue(t[k])
			if err != nil {
				return nil, err
			}
			entries = append(entries, ObjectEntry{Key: k, Value: val})
		}
		return Object(entries...), nil

	case []map[string]any:
		items := make([]*Value, 0, len(t))
		for _, elem := range t {
			val, err := tomlToValue(elem)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		return Array(items...), nil

	case []any:
		items := make([]*Value, 0, len(t))
		for _, elem := range t {
			val, err := tomlToValue(elem)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		return Array(items...), nil

	case bool:
		return Bool(t), nil
	case int64:
		return Int(t), nil
	case float64:
		return Float(t), nil
	case string:
		return Str(t), nil
	case time.Time:
		return Str(t.Format(time.RFC3339)), nil
	default:
		return nil, fmt.Errorf("unsupported TOML value type %T", v)
	}
}
