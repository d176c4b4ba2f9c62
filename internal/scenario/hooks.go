package scenario

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/casebook/internal/ir"
)

// SourceScenario labels hooks declared on the scenario itself.
const SourceScenario = "scenario"

type boundHook struct {
	source string
	fn     Hook
}

// HookContext is what the runner receives for one invocation: the two
// composed hook chains plus the invocation's title, parameters and the
// scenario's shared context.
type HookContext struct {
	Title    string
	Params   ir.Record
	Shared   any
	Scenario *Scenario

	before []boundHook
	after  []boundHook
}

// composeHooks orders the hooks for one invocation. Before runs the
// scenario hook, then plugins in declared order. After runs plugins in
// reverse order, then the scenario hook.
func composeHooks(sc *Scenario, encodedTitle string, params ir.Record) *HookContext {
	hc := &HookContext{
		Title:    encodedTitle,
		Params:   params,
		Shared:   sc.desc.Shared,
		Scenario: sc,
	}
	if sc.desc.Before != nil {
		hc.before = append(hc.before, boundHook{SourceScenario, sc.desc.Before})
	}
	for i, p := range sc.desc.Plugins {
		if p.BeforeEach != nil {
			hc.before = append(hc.before, boundHook{pluginSource(i, p), p.BeforeEach})
		}
	}
	for i, p := range slices.Backward(sc.desc.Plugins) {
		if p.AfterEach != nil {
			hc.after = append(hc.after, boundHook{pluginSource(i, p), p.AfterEach})
		}
	}
	if sc.desc.After != nil {
		hc.after = append(hc.after, boundHook{SourceScenario, sc.desc.After})
	}
	return hc
}

func pluginSource(i int, p Plugin) string {
	if p.Name != "" {
		return fmt.Sprintf("plugin %q", p.Name)
	}
	return fmt.Sprintf("plugin #%d", i)
}

// BeforeEach runs the composed before chain.
func (hc *HookContext) BeforeEach(ctx context.Context) error {
	return hc.run(ctx, PhaseBefore, hc.before)
}

// AfterEach runs the composed after chain.
func (hc *HookContext) AfterEach(ctx context.Context) error {
	return hc.run(ctx, PhaseAfter, hc.after)
}

// BeforeSources lists the origin of each before hook in execution order.
func (hc *HookContext) BeforeSources() []string { return sources(hc.before) }

// AfterSources lists the origin of each after hook in execution order.
func (hc *HookContext) AfterSources() []string { return sources(hc.after) }

func (hc *HookContext) run(ctx context.Context, phase Phase, chain []boundHook) error {
	for _, h := range chain {
		if err := h.fn(ctx, hc.Params, hc.Shared, hc.Scenario); err != nil {
			return &HookFailure{Phase: phase, Source: h.source, Err: err}
		}
	}
	return nil
}

func sources(chain []boundHook) []string {
	out := make([]string, len(chain))
	for i, h := range chain {
		out[i] = h.source
	}
	return out
}
