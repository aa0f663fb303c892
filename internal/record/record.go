package record

import (
	"errors"
	"fmt"
	"strings"
)

// Stage names one of the ordered side-effecting deployment steps.
type Stage string

const (
	StageVersionControl Stage = "version_control"
	StageHostA          Stage = "host_a"
	StageHostB          Stage = "host_b"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageVersionControl, StageHostA, StageHostB}

// Label returns a human-readable stage name.
func (s Stage) Label() string {
	switch s {
	case StageVersionControl:
		return "Version control"
	case StageHostA:
		return "Host A"
	case StageHostB:
		return "Host B"
	default:
		return string(s)
	}
}

// ErrIdentityFrozen is returned when an identity change is attempted after the
// repository has been published under the current name.
var ErrIdentityFrozen = errors.New("identity is frozen once version control is published")

// StageStatus holds one completion flag per stage.
type StageStatus struct {
	VersionControl bool `toml:"version_control"`
	HostA          bool `toml:"host_a"`
	HostB          bool `toml:"host_b"`
}

// ProjectRecord is the persisted progress of one project folder.
type ProjectRecord struct {
	Identity  string      `toml:"identity"`
	Stages    StageStatus `toml:"stages"`
	UpdatedAt string      `toml:"updated_at,omitempty"`
}

// New returns a fresh record with every stage pending.
func New(identity string) ProjectRecord {
	return ProjectRecord{Identity: strings.TrimSpace(identity)}
}

// Done reports whether stage has already succeeded.
func (r ProjectRecord) Done(stage Stage) bool {
	switch stage {
	case StageVersionControl:
		return r.Stages.VersionControl
	case StageHostA:
		return r.Stages.HostA
	case StageHostB:
		return r.Stages.HostB
	default:
		return false
	}
}

// MarkDone flips stage to true. Flags never revert, so there is no inverse.
func (r *ProjectRecord) MarkDone(stage Stage) error {
	switch stage {
	case StageVersionControl:
		r.Stages.VersionControl = true
	case StageHostA:
		r.Stages.HostA = true
	case StageHostB:
		r.Stages.HostB = true
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}
	return nil
}

// Complete reports whether every stage has succeeded.
func (r ProjectRecord) Complete() bool {
	for _, stage := range Stages {
		if !r.Done(stage) {
			return false
		}
	}
	return true
}

// Pending lists the stages that have not succeeded yet, in execution order.
func (r ProjectRecord) Pending() []Stage {
	var pending []Stage
	for _, stage := range Stages {
		if !r.Done(stage) {
			pending = append(pending, stage)
		}
	}
	return pending
}

// IdentityFrozen reports whether the identity can no longer change.
func (r ProjectRecord) IdentityFrozen() bool {
	return r.Stages.VersionControl && r.Identity != ""
}

// SetIdentity renames the project. Renames are only allowed before the
// version-control stage has published under the current name.
func (r *ProjectRecord) SetIdentity(identity string) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return errors.New("identity must not be empty")
	}
	if identity == r.Identity {
		return nil
	}
	if r.IdentityFrozen() {
		return ErrIdentityFrozen
	}
	r.Identity = identity
	return nil
}

// merge folds the on-disk record into r: flags are OR-ed and a frozen
// identity on disk wins over an in-memory one.
func (r *ProjectRecord) merge(disk ProjectRecord) {
	r.Stages.VersionControl = r.Stages.VersionControl || disk.Stages.VersionControl
	r.Stages.HostA = r.Stages.HostA || disk.Stages.HostA
	r.Stages.HostB = r.Stages.HostB || disk.Stages.HostB
	if disk.IdentityFrozen() {
		r.Identity = disk.Identity
	}
}
