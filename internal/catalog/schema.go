package catalog

import "sort"

// =============================================================================
// SCHEMA INFERENCE
// Single pass over the materialized record subset. Cost is
// O(records x fields-present-per-record), which matters for wide or
// sparse record sets.
// =============================================================================

type fieldAccumulator struct {
	types    map[string]struct{}
	examples []any
	hasNull  bool
}

// InferSchema derives a schema from the record payloads. Null and missing
// values do not contribute a type; they mark the field nullable. A field
// observed with more than one runtime type is reported as "mixed".
func InferSchema(records []UnifiedDataRecord) CatalogSchema {
	accs := make(map[string]*fieldAccumulator)
	var order []string

	for _, rec := range records {
		payload, ok := rec.Data.(map[string]any)
		if !ok {
			continue
		}
		keys := make([]string, 0, len(payload))
		for key := range payload {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			acc := accs[key]
			if acc == nil {
				acc = &fieldAccumulator{types: make(map[string]struct{})}
				accs[key] = acc
				order = append(order, key)
			}
			value := payload[key]
			if value == nil {
				acc.hasNull = true
				continue
			}
			acc.types[valueTypeName(value)] = struct{}{}
			if len(acc.examples) < MaxFieldExamples {
				acc.examples = append(acc.examples, value)
			}
		}
	}

	fields := make([]FieldDescriptor, 0, len(order))
	for _, name := range order {
		acc := accs[name]
		fields = append(fields, FieldDescriptor{
			Name:     name,
			Type:     inferredType(acc.types),
			Nullable: acc.hasNull,
			Examples: acc.examples,
		})
	}
	return CatalogSchema{Fields: fields}
}

// BuildSummary derives the aggregate counts from an inferred schema.
// sampleSize is the number of records the inference actually saw, which
// may be smaller than totalRecords when a cap applied.
func BuildSummary(schema CatalogSchema, totalRecords, sampleSize int) CatalogSummary {
	seen := make(map[string]struct{})
	var dataTypes []string
	for _, f := range schema.Fields {
		if _, ok := seen[f.Type]; ok {
			continue
		}
		seen[f.Type] = struct{}{}
		dataTypes = append(dataTypes, f.Type)
	}
	if dataTypes == nil {
		dataTypes = []string{}
	}
	return CatalogSummary{
		DataTypes:   dataTypes,
		RecordCount: totalRecords,
		FieldCount:  len(schema.Fields),
		SampleSize:  sampleSize,
	}
}

func inferredType(types map[string]struct{}) string {
	if len(types) != 1 {
		return "mixed"
	}
	for t := range types {
		return t
	}
	return "mixed"
}

// valueTypeName maps a decoded JSON value to its catalog type name.
func valueTypeName(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case float64, float32, int, int32, int64:
		return "number"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return "object"
	}
}
