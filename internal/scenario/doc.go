// Package scenario composes annotated test scenarios and materializes them
// into concrete invocations.
//
// A scenario starts as a Descriptor built up by Annotations (title, tags,
// brands, priority, meta, parameter source, hooks, plugins, shared context).
// Sealing a Catalog freezes every descriptor into a Scenario. A Materializer
// then resolves each scenario's parameter source into N records and
// registers exactly N invocations with a Registrar, each with a title that
// carries the scenario metadata as JSON and a hook chain that wraps the
// scenario's hooks around its plugins' hooks.
//
// Annotations are pure functions over a value-typed Descriptor, so the
// order in which they are applied only matters where an annotation says
// so: priority is first-wins, tag and brand groups overwrite per category,
// everything else is last-wins.
package scenario
