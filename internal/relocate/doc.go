// Package relocate moves completed project folders out of the working root.
//
// A rename that fails because another process still holds a handle inside the
// folder (a dev server, a bundler watcher, an antivirus scan) is retried with
// a fixed delay, optionally terminating known lingering processes between
// attempts. Any other failure aborts at once. The source is never deleted or
// partially copied: a folder is either renamed whole or left where it was.
package relocate
