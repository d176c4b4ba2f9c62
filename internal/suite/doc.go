// Package suite loads suite manifests: which Lua scenario scripts make up
// a run, the globals exposed to them, an optional scenario name filter and
// the expectations checked after execution.
//
// Manifests are YAML (.yaml, .yml) or CUE (.cue):
//
//	name: sms
//	scripts: [send_sms.lua, checkout.lua]
//	filter: "send_*"
//	globals:
//	  region: us
//	expect:
//	  - type: outcome_count
//	    status: failed
//	    count: 0
//
// Script paths are relative to the manifest's directory.
package suite
