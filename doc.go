// Package scripthost wires the document store, the analysis host and the
// tree-sitter engine into a Workspace. A Workspace owns a flat namespace of
// path-addressed documents, records every edit as a change range, and lets the
// engine pull snapshots and re-parse incrementally on demand.
//
// A minimal session needs only a few lines:
//
//	ws, err := scripthost.New()
//	if err != nil { ... }
//	defer ws.Close()
//	ws.Create("/main.ts", "let x = 1;")
//	ws.Replace("/main.ts", 4, 5, "answer")
//	ws.Analyze(ctx)
//	diags, version, _ := ws.Diagnostics("/main.ts")
//
// See cmd/scripthost for a command-line front end.
package scripthost
