// Package title renders invocation titles.
//
// A title starts as a Go text/template over one parameter record:
//
//	send {{.smsMessage}} to {{.accountTag}}
//
// When a scenario carries tags, brands, free-form metadata or a priority
// level, the substituted title and that metadata are folded into a single
// JSON object so the harness still receives one string while downstream
// tooling can parse the structure back out with Decode:
//
//	{"title":"send 1 to us","tags":[["salesforce",{"modes":["classic"]}]],"team":"sms","level":["p0"]}
//
// Keys keep insertion order: title, tags, brands, free-form keys (sorted),
// level. A later key with the name of an earlier one replaces its value in
// place, so free-form metadata may overwrite title, tags or brands and the
// level overwrites a free-form "level".
package title
