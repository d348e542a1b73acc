// Package schema reflects Go types into the JSON-schema parameter
// definitions advertised to the model for tool calling.
package schema

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	"github.com/lmfoundry/locallm/llmutils"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	cache   = make(map[reflect.Type]*Schema)
	cacheMu sync.Mutex
)

// Schema pairs the reflected JSON schema with the flattened function
// parameter definition tools expose in prompts.
type Schema struct {
	*jsonschema.Schema
	// Parameters is the top-level object schema with $refs resolved.
	Parameters *jsonschema.Schema
}

// New reflects t into a schema. Results are cached per type.
func New(t reflect.Type) (*Schema, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if s, ok := cache[t]; ok {
		return s, nil
	}

	reflected := reflectType(t)
	params, err := toFunctionSchema(reflected)
	if err != nil {
		return nil, err
	}
	s := &Schema{
		Schema:     reflected,
		Parameters: params,
	}
	cache[t] = s
	return s, nil
}

func (s *Schema) String() string {
	return llmutils.ToJSONIndent(s.Parameters)
}

// toFunctionSchema lifts the root definition out of the $defs map and
// inlines any referenced definitions, since tool-calling prompts need a
// self-contained object schema.
func toFunctionSchema(reflected *jsonschema.Schema) (*jsonschema.Schema, error) {
	rootID := strings.TrimPrefix(reflected.Ref, "#/$defs/")

	defs := make(map[string]*jsonschema.Schema)
	var root *jsonschema.Schema
	for name, def := range reflected.Definitions {
		if name == rootID {
			root = def
		} else {
			defs[name] = def
		}
	}
	if root == nil {
		return nil, errors.Newf("root definition %q not found", rootID)
	}

	res := &jsonschema.Schema{
		Type:       root.Type,
		Properties: root.Properties,
		Required:   root.Required,
	}
	if err := resolveRefs(res.Properties, defs); err != nil {
		return nil, err
	}
	return res, nil
}

func resolveRefs(props *orderedmap.OrderedMap[string, *jsonschema.Schema], defs map[string]*jsonschema.Schema) error {
	if props == nil {
		return nil
	}
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		child := pair.Value
		if child.Ref != "" {
			name := strings.TrimPrefix(child.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Newf("unresolved schema reference %q", child.Ref)
			}
			pair.Value = def
			child = def
		}
		if child.Items != nil && child.Items.Ref != "" {
			name := strings.TrimPrefix(child.Items.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Newf("unresolved schema reference %q", child.Items.Ref)
			}
			child.Items = def
		}
		if child.Properties != nil {
			if err := resolveRefs(child.Properties, defs); err != nil {
				return err
			}
		}
	}
	return nil
}

func reflectType(t reflect.Type) *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	// Struct names can collide across packages; qualify them with a hash
	// of the full package path so $refs stay unambiguous.
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			full := t.PkgPath() + "/" + t.Name()
			name = t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(full), 10)
		}
		return name
	}
	return r.ReflectFromType(t)
}
