// Package luadsl lets scenarios be written as Lua scripts.
//
// A script builds scenarios through the global scenario table:
//
//	local s = scenario.new("send_sms")
//	s:title("send {{.n}} to {{.region}}")
//	 :examples([[
//	   | n | region |
//	   | 1 | 'us'   |
//	 ]])
//	 :p0()
//	 :salesforce({ modes = { "classic" } })
//	 :before_each(function(params, shared) shared.sent = 0 end)
//	 :run(function(params, shared) assert(params.n > 0) end)
//
// Every builder method applies its annotation immediately, so an invalid
// argument raises a Lua error at the offending line and the load fails
// with the underlying *scenario.ValidationError. Lua functions passed to
// before_each, after_each, plugins, params and run are kept inside the
// interpreter and called back from Go when invocations execute.
//
// Each scenario gets an empty table as its shared context unless the
// script sets one with :context(tbl). The table itself is handed to every
// hook and to the run function, so writes made in before_each are visible
// to run and after_each.
package luadsl
