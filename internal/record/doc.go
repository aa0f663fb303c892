// Package record persists per-folder deployment progress.
//
// Each project folder carries a small TOML sidecar holding the folder's
// canonical identity and one flag per stage. The Store is the ground truth for
// what has already succeeded: Load never fails (absent, unreadable, or
// malformed sidecars degrade to a fresh record), and Save merges with whatever
// is on disk so a flag that was once true can never be observed as false.
// Sidecars are written atomically and left in place after relocation as an
// audit trail.
package record
