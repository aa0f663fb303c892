// Package stageexec runs one stage against one folder and turns the result
// into an Outcome. A stage whose flag is already set is skipped without
// touching its collaborator; a successful stage has its flag persisted before
// Run returns.
package stageexec
