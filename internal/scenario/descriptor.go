package scenario

import (
	"context"
	"maps"
	"slices"

	"github.com/roach88/casebook/internal/ir"
	"github.com/roach88/casebook/internal/title"
)

// Priority is the scenario level. The zero value means unset.
type Priority string

const (
	PriorityUnset Priority = ""
	PriorityP0    Priority = "p0"
	PriorityP1    Priority = "p1"
)

// Tag and brand group names. Groups are always emitted in this order,
// independent of the order the annotations were applied in.
const (
	TagSalesforce = "salesforce"
	TagGoogle     = "google"
	BrandRC       = "rc"
	BrandBT       = "bt"
)

var (
	tagOrder   = []string{TagSalesforce, TagGoogle}
	brandOrder = []string{BrandRC, BrandBT}
)

// Hook runs before or after one invocation. It receives the invocation's
// parameter record, the scenario's shared context and the scenario itself.
type Hook func(ctx context.Context, params ir.Record, shared any, sc *Scenario) error

// Transform rewrites the resolved record list before materialization.
// The result length decides how many invocations are registered.
type Transform func(records []ir.Record) ([]ir.Record, error)

// Plugin contributes hooks that wrap around every invocation of a scenario.
// Either hook may be nil.
type Plugin struct {
	Name       string
	BeforeEach Hook
	AfterEach  Hook
}

// Descriptor is the accumulated metadata of one scenario. It is a value:
// annotations receive a copy and return a modified copy.
type Descriptor struct {
	Title     string
	Source    Source
	Transform Transform
	Tags      []title.Group
	Brands    []title.Group
	Meta      map[string]any
	Level     Priority
	Before    Hook
	After     Hook
	Plugins   []Plugin

	// Shared is handed to every hook and step by reference.
	Shared any
}

// clone detaches the descriptor's maps and slices so a modified copy never
// aliases the original.
func (d Descriptor) clone() Descriptor {
	d.Tags = slices.Clone(d.Tags)
	d.Brands = slices.Clone(d.Brands)
	d.Plugins = slices.Clone(d.Plugins)
	if d.Meta != nil {
		d.Meta = maps.Clone(d.Meta)
	}
	return d
}

// Metadata projects the descriptor onto the fields folded into titles.
func (d Descriptor) Metadata() title.Metadata {
	return title.Metadata{
		Tags:   d.Tags,
		Brands: d.Brands,
		Meta:   d.Meta,
		Level:  string(d.Level),
	}
}

// setGroup replaces the group with g.Name (or adds it) and keeps the result
// in category order.
func setGroup(groups []title.Group, order []string, g title.Group) []title.Group {
	out := make([]title.Group, 0, len(groups)+1)
	for _, existing := range groups {
		if existing.Name != g.Name {
			out = append(out, existing)
		}
	}
	out = append(out, g)
	slices.SortStableFunc(out, func(a, b title.Group) int {
		return slices.Index(order, a.Name) - slices.Index(order, b.Name)
	})
	return out
}
