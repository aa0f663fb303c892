// Package main hosts the shipit CLI entrypoint and command graph.
//
// `shipit run` processes every project folder under the working root:
// publish to GitHub, deploy to Vercel and Netlify, then move finished
// folders into the completed directory. `status` and `history` read the
// per-folder sidecars and the SQLite ledger, `doctor` checks tools and
// authentication, and `config` scaffolds and validates configuration.
//
// Keep this package lean: behavior lives in internal/workflow and the stage
// packages; commands only resolve configuration and render results.
package main
