// Package publish implements the version-control stage: it makes sure the
// folder carries an ignore file and a local repository, then creates the
// remote under the project identity and pushes.
//
// Name collisions with unrelated remotes are resolved by retrying under the
// identity plus a short numeric suffix. A folder that is already wired to a
// remote is treated as published and only pushed.
package publish
