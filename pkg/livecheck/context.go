package livecheck

import (
	"sort"
	"strings"

	"weaver/pkg/catalog"
	"weaver/pkg/resolver"
	"weaver/pkg/semconv"
)

// ResolvedContext is the read-only view over a Resolved Schema that every
// advisor consults to look up registry attributes/groups for a sample
// (§4.6, §5's "Resolved Schema and Attribute Catalog are shared read-only
// across advisors and across parallel streams").
type ResolvedContext struct {
	Schema *resolver.ResolvedSchema

	templatePrefixes []templatePrefix // longest-prefix-first

	metricGroups   map[semconv.SignalID]*resolver.ResolvedGroup
	spanGroups     map[string]*resolver.ResolvedGroup
	eventGroups    map[string]*resolver.ResolvedGroup
	resourceGroups []*resolver.ResolvedGroup
}

type templatePrefix struct {
	prefix string
	ref    catalog.AttributeRef
}

// NewResolvedContext indexes schema's groups by the keys live-check lookups
// need: exact/template attribute match, and span/event/metric name lookup
// for the requirement-level advisor's "containing signal" (§4.6 item 6).
func NewResolvedContext(schema *resolver.ResolvedSchema) *ResolvedContext {
	rc := &ResolvedContext{
		Schema:       schema,
		metricGroups: make(map[semconv.SignalID]*resolver.ResolvedGroup),
		spanGroups:   make(map[string]*resolver.ResolvedGroup),
		eventGroups:  make(map[string]*resolver.ResolvedGroup),
	}

	for _, attr := range schema.Catalog.All() {
		if attr.Type.Template {
			ref, ok := schema.Catalog.Lookup(attr.Key)
			if ok {
				rc.templatePrefixes = append(rc.templatePrefixes, templatePrefix{
					prefix: string(attr.Key),
					ref:    ref,
				})
			}
		}
	}
	sort.Slice(rc.templatePrefixes, func(i, j int) bool {
		return len(rc.templatePrefixes[i].prefix) > len(rc.templatePrefixes[j].prefix)
	})

	for _, g := range schema.Registry.Groups() {
		switch g.Type {
		case semconv.GroupMetric:
			if g.MetricName != "" {
				rc.metricGroups[g.MetricName] = g
			} else {
				rc.metricGroups[g.ID] = g
			}
		case semconv.GroupSpan:
			rc.spanGroups[string(g.ID)] = g
			if g.Name != "" {
				rc.spanGroups[g.Name] = g
			}
		case semconv.GroupEvent:
			rc.eventGroups[string(g.ID)] = g
			if g.Name != "" {
				rc.eventGroups[g.Name] = g
			}
		case semconv.GroupResource:
			rc.resourceGroups = append(rc.resourceGroups, g)
		}
	}

	return rc
}

// LookupAttribute finds an attribute by exact key; failing that, by
// longest-prefix template match (§4.6 item 1).
func (rc *ResolvedContext) LookupAttribute(name string) (attr *semconv.Attribute, templateMatched bool, ok bool) {
	if ref, found := rc.Schema.Catalog.Lookup(semconv.SignalID(name)); found {
		a, _ := rc.Schema.Catalog.Get(ref)
		return a, false, true
	}
	for _, tp := range rc.templatePrefixes {
		if strings.HasPrefix(name, tp.prefix+".") {
			a, _ := rc.Schema.Catalog.Get(tp.ref)
			return a, true, true
		}
	}
	return nil, false, false
}

// LookupMetricGroup finds the registry group declaring the named metric.
func (rc *ResolvedContext) LookupMetricGroup(name string) (*resolver.ResolvedGroup, bool) {
	g, ok := rc.metricGroups[semconv.SignalID(name)]
	return g, ok
}

// LookupSpanGroup finds the registry group declaring the named span.
func (rc *ResolvedContext) LookupSpanGroup(name string) (*resolver.ResolvedGroup, bool) {
	g, ok := rc.spanGroups[name]
	return g, ok
}

// LookupEventGroup finds the registry group declaring the named event.
func (rc *ResolvedContext) LookupEventGroup(name string) (*resolver.ResolvedGroup, bool) {
	g, ok := rc.eventGroups[name]
	return g, ok
}

// ResourceGroups returns every resolved resource group, for resource
// samples (which carry no name of their own to look up by).
func (rc *ResolvedContext) ResourceGroups() []*resolver.ResolvedGroup {
	return rc.resourceGroups
}

// SampleRef is the per-sample working value threaded through the advisor
// chain: the raw sample plus whatever registry attribute/group earlier
// advisors (principally the registry-lookup advisor) resolved for it.
type SampleRef struct {
	Sample *Sample

	// Attribute is the resolved registry attribute for an attribute-kind
	// sample (or for one entry of a container sample's attribute list),
	// nil if no match was found.
	Attribute       *semconv.Attribute
	AttributeRef    catalog.AttributeRef
	TemplateMatched bool

	// Group is the resolved containing signal (metric/span/event group)
	// for container-kind samples.
	Group *resolver.ResolvedGroup

	// Stop suppresses the remaining semantic advisors for this sample
	// (§4.6 item 1: an unresolved attribute stops the chain).
	Stop bool
}
