package semconv

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DecodeStrict unmarshals a YAML mapping node into out, rejecting any
// mapping key that has no corresponding `yaml:"..."` struct tag on out's
// type. gopkg.in/yaml.v3's KnownFields only enforces this reliably for the
// outermost struct; DecodeStrict recurses so nested structs (RawGroup,
// AttrSpecOrRef, EnumSpec, ...) are checked too (§6).
func DecodeStrict(node *yaml.Node, out any) error {
	if err := node.Decode(out); err != nil {
		return err
	}
	return checkUnknownKeys(node, reflect.TypeOf(out))
}

var unmarshalerType = reflect.TypeOf((*yaml.Unmarshaler)(nil)).Elem()

// hasCustomUnmarshaler reports whether t defines its own YAML decoding
// (Deprecation, RequirementLevel, EnumValue, ...). Such types are free to
// use wire shapes that don't match their Go field names, so unknown-key
// checking stops at their boundary and trusts the custom Unmarshal.
func hasCustomUnmarshaler(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(unmarshalerType)
}

var tagSetCache sync.Map // reflect.Type -> map[string]reflect.Type (field type, for recursion)

func knownTags(t reflect.Type) map[string]reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	if cached, ok := tagSetCache.Load(t); ok {
		return cached.(map[string]reflect.Type)
	}
	tags := make(map[string]reflect.Type)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name == "" || name == "-" {
			continue
		}
		ft := f.Type
		for ft.Kind() == reflect.Ptr || ft.Kind() == reflect.Slice {
			ft = ft.Elem()
		}
		tags[name] = ft
	}
	tagSetCache.Store(t, tags)
	return tags
}

// checkUnknownKeys walks a decoded mapping/sequence node and verifies every
// mapping key it finds is declared on the corresponding Go struct type.
func checkUnknownKeys(node *yaml.Node, t reflect.Type) error {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() == reflect.Struct && hasCustomUnmarshaler(t) {
		return nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		for _, c := range node.Content {
			if err := checkUnknownKeys(c, t); err != nil {
				return err
			}
		}
		return nil
	case yaml.MappingNode:
		known := knownTags(t)
		if known == nil {
			return nil
		}
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			val := node.Content[i+1]
			fieldType, ok := known[key.Value]
			if !ok {
				return fmt.Errorf("%d:%d: unknown field %q for %s", key.Line, key.Column, key.Value, t.Name())
			}
			if fieldType != nil && fieldType.Kind() == reflect.Struct {
				if err := checkUnknownKeys(val, fieldType); err != nil {
					return err
				}
			}
		}
		return nil
	case yaml.SequenceNode:
		// Reached through a struct field, t is already the element type
		// (knownTags strips slices).
		elemType := t
		if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
			elemType = t.Elem()
		}
		for elemType.Kind() == reflect.Ptr {
			elemType = elemType.Elem()
		}
		for _, c := range node.Content {
			if err := checkUnknownKeys(c, elemType); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// DecodeRegistryFile parses one registry YAML document into a RegistryFile,
// rejecting unknown keys per §6's "strict schemas".
func DecodeRegistryFile(data []byte) (*RegistryFile, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return &RegistryFile{}, nil
	}

	var rf RegistryFile
	if err := DecodeStrict(node.Content[0], &rf); err != nil {
		return nil, err
	}
	return &rf, nil
}

// DecodeRegistryManifest parses a registry_manifest.yaml document.
func DecodeRegistryManifest(data []byte) (*RegistryManifest, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return &RegistryManifest{}, nil
	}

	var m RegistryManifest
	if err := DecodeStrict(node.Content[0], &m); err != nil {
		return nil, err
	}
	return &m, nil
}
