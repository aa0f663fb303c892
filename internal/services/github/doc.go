// Package github wraps the gh and git command-line tools used to publish a
// project folder as a GitHub repository.
//
// The client only shells out; it never reimplements git. Failures of
// `gh repo create` are classified so the version-control stage can tell a
// name collision (retry under a suffixed name) from an already-linked folder
// (push instead of create).
package github
