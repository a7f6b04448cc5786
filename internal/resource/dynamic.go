package resource

import (
	"sort"

	casing "github.com/conduit-lang/restmap/internal/util/strings"
	"go.uber.org/zap"
)

// UpdateResourceFields registers a field for every attribute in attributes
// that the type does not already have. Mapping values become nested resource
// types, synthesized recursively; everything else becomes a scalar field.
//
// Known fields are never touched, even when the new value has a different
// shape. Concurrent calls are serialized per type.
func (m *Metadata) UpdateResourceFields(attributes map[string]interface{}) error {
	if !m.dynamicSchema {
		return ErrStaticSchema
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range sortedKeys(attributes) {
		if _, exists := m.fields[name]; exists || name == "" {
			continue
		}

		f, err := m.synthesizeField(name, attributes[name])
		if err != nil {
			return err
		}
		m.putField(f)

		m.logger.Debug("synthesized resource field",
			zap.String("resource", m.name),
			zap.String("field", name),
			zap.Stringer("kind", f.kind),
		)
	}
	return nil
}

// synthesizeField builds the field for one newly observed attribute
func (m *Metadata) synthesizeField(name string, value interface{}) (*Field, error) {
	nested, ok := value.(map[string]interface{})
	if !ok {
		return NewField(name), nil
	}

	sub, err := Define(SynthesizedTypeName(name), nil, Options{
		DynamicSchema: true,
		Cache:         m.cache,
		Logger:        m.logger,
	})
	if err != nil {
		return nil, err
	}

	for _, subName := range sortedKeys(nested) {
		f, err := sub.synthesizeField(subName, nested[subName])
		if err != nil {
			return nil, err
		}
		// sub is not yet reachable from any other goroutine
		sub.putField(f)
	}

	return NewResourceField(name, sub), nil
}

// SynthesizedTypeName derives the type name for a nested attribute
// (author_info -> AuthorInfoResource)
func SynthesizedTypeName(attribute string) string {
	return casing.ToPascalCase(attribute) + "Resource"
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
