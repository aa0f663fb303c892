// Package workflow drives a batch over the working root.
//
// The Manager enumerates the immediate project folders, loads each folder's
// record, and runs the version-control, host A, and host B stages in that
// order. A failed stage never stops later stages. Once every flag is set the
// folder is moved into the completed-items directory; otherwise it stays put
// and the next batch retries whatever is pending.
//
// Folders are processed strictly one at a time. A panic or unexpected error
// in one folder is contained to that folder, which is reported as
// errored_retained, and the batch moves on. The only batch-level failures are
// a missing root and another batch already holding the root lock.
//
// Stage health (provider authentication) is checked lazily, at most once per
// batch and only when some folder actually needs the stage, so a batch of
// finished folders makes no external calls at all.
package workflow
