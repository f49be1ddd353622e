package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Registry / loader
	AttrRegistryPath       = "registry.path"
	AttrRegistrySourceKind = "registry.source_kind"
	AttrDependencyCount    = "registry.dependency_count"

	// Resolver
	AttrGroupCount     = "resolve.group_count"
	AttrAttributeCount = "resolve.attribute_count"
	AttrCatalogSize    = "resolve.catalog_size"

	// Diff
	AttrDiffAdded   = "diff.added_count"
	AttrDiffRemoved = "diff.removed_count"
	AttrDiffChanged = "diff.changed_count"

	// Policy
	AttrPolicyStage      = "policy.stage"
	AttrPolicyViolations = "policy.violations"

	// Live-check
	AttrSampleKind   = "live_check.sample_kind"
	AttrFindingID    = "live_check.finding_id"
	AttrFindingLevel = "live_check.finding_level"
	AttrSamplesTotal = "live_check.samples_total"
)

// RegistryAttributes возвращает атрибуты загрузки реестра
func RegistryAttributes(path, sourceKind string, dependencyCount int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrRegistryPath, path),
		attribute.String(AttrRegistrySourceKind, sourceKind),
		attribute.Int(AttrDependencyCount, dependencyCount),
	}
}

// ResolveAttributes возвращает атрибуты операции резолюции
func ResolveAttributes(groupCount, attributeCount, catalogSize int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrGroupCount, groupCount),
		attribute.Int(AttrAttributeCount, attributeCount),
		attribute.Int(AttrCatalogSize, catalogSize),
	}
}

// DiffAttributes возвращает атрибуты сравнения схем
func DiffAttributes(added, removed, changed int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrDiffAdded, added),
		attribute.Int(AttrDiffRemoved, removed),
		attribute.Int(AttrDiffChanged, changed),
	}
}

// PolicyAttributes возвращает атрибуты вызова политики
func PolicyAttributes(stage string, violations int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrPolicyStage, stage),
		attribute.Int(AttrPolicyViolations, violations),
	}
}

// LiveCheckAttributes возвращает атрибуты запуска live-check
func LiveCheckAttributes(sampleKind string, samplesTotal int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSampleKind, sampleKind),
		attribute.Int(AttrSamplesTotal, samplesTotal),
	}
}
