// Package preflight provides readiness checks for the working root and the
// provider CLIs shipit depends on.
//
// The `shipit doctor` command runs RunAll and renders the results. The batch
// itself does not call preflight: it checks provider health lazily, per
// stage, only when a folder needs that stage.
package preflight
