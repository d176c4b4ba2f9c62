package scenario

import (
	"fmt"
	"maps"

	"github.com/roach88/casebook/internal/ir"
	"github.com/roach88/casebook/internal/title"
)

// Annotation updates one slot of a descriptor. Annotations never mutate
// their input; they return a modified copy or a *ValidationError.
type Annotation func(Descriptor) (Descriptor, error)

// Apply runs anns over d in order and stops at the first error.
func Apply(d Descriptor, anns ...Annotation) (Descriptor, error) {
	for _, ann := range anns {
		next, err := ann(d.clone())
		if err != nil {
			return d, err
		}
		d = next
	}
	return d, nil
}

// failed returns an annotation that reports err when applied. Argument
// validation happens when the annotation is constructed; the error is
// surfaced at the first application.
func failed(err error) Annotation {
	return func(d Descriptor) (Descriptor, error) { return d, err }
}

// Title sets the title template.
func Title(value string) Annotation {
	if value == "" {
		return failed(invalid("title", MsgTitleRequired))
	}
	return func(d Descriptor) (Descriptor, error) {
		d.Title = value
		return d, nil
	}
}

// Meta merges record into the free-form metadata. Colliding keys are
// overwritten.
func Meta(record map[string]any) Annotation {
	return func(d Descriptor) (Descriptor, error) {
		if len(record) == 0 {
			return d, nil
		}
		if d.Meta == nil {
			d.Meta = make(map[string]any, len(record))
		}
		maps.Copy(d.Meta, record)
		return d, nil
	}
}

// P0 sets the level to p0 unless a level is already set.
func P0() Annotation { return level(PriorityP0) }

// P1 sets the level to p1 unless a level is already set.
func P1() Annotation { return level(PriorityP1) }

func level(p Priority) Annotation {
	return func(d Descriptor) (Descriptor, error) {
		if d.Level == PriorityUnset {
			d.Level = p
		}
		return d, nil
	}
}

// Salesforce records the salesforce tag group, optionally configured.
func Salesforce(cfg ...any) Annotation { return tag(TagSalesforce, cfg) }

// Google records the google tag group, optionally configured.
func Google(cfg ...any) Annotation { return tag(TagGoogle, cfg) }

// RC records the rc brand group, optionally configured.
func RC(cfg ...any) Annotation { return brand(BrandRC, cfg) }

// BT records the bt brand group, optionally configured.
func BT(cfg ...any) Annotation { return brand(BrandBT, cfg) }

func tag(name string, cfg []any) Annotation {
	g, err := group(name, cfg)
	if err != nil {
		return failed(err)
	}
	return func(d Descriptor) (Descriptor, error) {
		d.Tags = setGroup(d.Tags, tagOrder, g)
		return d, nil
	}
}

func brand(name string, cfg []any) Annotation {
	g, err := group(name, cfg)
	if err != nil {
		return failed(err)
	}
	return func(d Descriptor) (Descriptor, error) {
		d.Brands = setGroup(d.Brands, brandOrder, g)
		return d, nil
	}
}

func group(name string, cfg []any) (title.Group, error) {
	switch len(cfg) {
	case 0:
		return title.Group{Name: name}, nil
	case 1:
		return title.Group{Name: name, Config: cfg[0], HasConfig: true}, nil
	default:
		return title.Group{}, invalid(name,
			fmt.Sprintf("@%s argument error, it accepts at most one configuration.", name))
	}
}

// Examples sets the parameter source. Tables are parsed here, so a
// malformed table fails at definition time.
func Examples(src Source) Annotation {
	prepared, err := src.prepare()
	if err != nil {
		return failed(err)
	}
	return func(d Descriptor) (Descriptor, error) {
		d.Source = prepared
		return d, nil
	}
}

// ExamplesOf infers a Source from a dynamically typed value:
//
//	string                       table text
//	[]string                     table text (first chunk)
//	ir.Record, map[string]any    a single record
//	[]ir.Record, []map[string]any
//	[]any of objects             records
//
// Anything else is rejected.
func ExamplesOf(v any) Annotation {
	src, ok := inferSource(v)
	if !ok {
		return failed(invalid("examples", MsgExamplesInvalid))
	}
	return Examples(src)
}

func inferSource(v any) (Source, bool) {
	switch val := v.(type) {
	case Source:
		return val, true
	case string:
		return Table(val), true
	case []string:
		if len(val) == 0 {
			return Source{}, false
		}
		return Table(val[0]), true
	case ir.Record:
		if val == nil {
			return Source{}, false
		}
		return Records(val), true
	case map[string]any:
		if val == nil {
			return Source{}, false
		}
		return Records(ir.Record(val)), true
	case []ir.Record:
		return Records(val...), true
	case []map[string]any:
		recs := make([]ir.Record, len(val))
		for i, m := range val {
			recs[i] = ir.Record(m)
		}
		return Records(recs...), true
	case []any:
		return inferSequence(val)
	default:
		return Source{}, false
	}
}

func inferSequence(seq []any) (Source, bool) {
	if len(seq) == 0 {
		return Source{}, false
	}
	if first, ok := seq[0].(string); ok {
		return Table(first), true
	}
	recs := make([]ir.Record, 0, len(seq))
	for _, item := range seq {
		switch rec := item.(type) {
		case ir.Record:
			recs = append(recs, rec)
		case map[string]any:
			recs = append(recs, ir.Record(rec))
		default:
			return Source{}, false
		}
	}
	return Records(recs...), true
}

// BeforeEach sets the scenario's own before hook.
func BeforeEach(h Hook) Annotation {
	if h == nil {
		return failed(invalid("beforeEach", MsgBeforeEachFunc))
	}
	return func(d Descriptor) (Descriptor, error) {
		d.Before = h
		return d, nil
	}
}

// AfterEach sets the scenario's own after hook.
func AfterEach(h Hook) Annotation {
	if h == nil {
		return failed(invalid("afterEach", MsgAfterEachFunc))
	}
	return func(d Descriptor) (Descriptor, error) {
		d.After = h
		return d, nil
	}
}

// Plugins replaces the plugin list. Plugins without hooks are allowed.
func Plugins(list ...Plugin) Annotation {
	return func(d Descriptor) (Descriptor, error) {
		d.Plugins = append([]Plugin(nil), list...)
		return d, nil
	}
}

// Params sets the transform applied to resolved records.
func Params(t Transform) Annotation {
	if t == nil {
		return failed(invalid("params", MsgParamsFunc))
	}
	return func(d Descriptor) (Descriptor, error) {
		d.Transform = t
		return d, nil
	}
}

// Context sets the shared context handed to hooks and the step.
func Context(shared any) Annotation {
	return func(d Descriptor) (Descriptor, error) {
		d.Shared = shared
		return d, nil
	}
}
