package record

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"shipit/internal/fileutil"
	"shipit/internal/textutil"
)

// Source describes where a loaded record came from.
type Source string

const (
	// SourceSidecar means the record was read from a well-formed sidecar.
	SourceSidecar Source = "sidecar"
	// SourceFresh means no sidecar existed.
	SourceFresh Source = "fresh"
	// SourceCorrupt means a sidecar existed but could not be read or parsed.
	SourceCorrupt Source = "corrupt"
)

// DefaultSidecarName is the sidecar file name used when none is configured.
const DefaultSidecarName = ".shipit.toml"

// Store reads and writes project sidecars.
type Store struct {
	sidecarName string
	now         func() time.Time
}

// NewStore constructs a store that keeps records in sidecarName inside each folder.
func NewStore(sidecarName string) *Store {
	sidecarName = strings.TrimSpace(sidecarName)
	if sidecarName == "" {
		sidecarName = DefaultSidecarName
	}
	return &Store{sidecarName: sidecarName, now: time.Now}
}

// SidecarName returns the file name used for sidecars.
func (s *Store) SidecarName() string {
	return s.sidecarName
}

// Path returns the sidecar path for folder.
func (s *Store) Path(folder string) string {
	return filepath.Join(folder, s.sidecarName)
}

// Load returns the record for folder. It never fails: an absent, unreadable,
// or malformed sidecar yields a fresh record whose identity is derived from the
// folder name. The Source tells callers which case applied; Detail carries the
// read or parse problem for corrupt sidecars.
func (s *Store) Load(folder string) (ProjectRecord, Source, error) {
	derived := textutil.DeriveIdentity(filepath.Base(folder))

	data, err := os.ReadFile(s.Path(folder))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(derived), SourceFresh, nil
		}
		return New(derived), SourceCorrupt, fmt.Errorf("read sidecar: %w", err)
	}

	rec, err := decode(data)
	if err != nil {
		return New(derived), SourceCorrupt, err
	}
	if rec.Identity == "" {
		rec.Identity = derived
	}
	return rec, SourceSidecar, nil
}

// Save writes rec to the folder's sidecar, replacing prior content. Flags that
// are already true on disk stay true and a frozen identity on disk is kept, so
// a stale in-memory record can never regress persisted progress. The merged
// record that was written is returned.
func (s *Store) Save(folder string, rec ProjectRecord) (ProjectRecord, error) {
	if data, err := os.ReadFile(s.Path(folder)); err == nil {
		if disk, err := decode(data); err == nil {
			rec.merge(disk)
		}
	}
	if strings.TrimSpace(rec.Identity) == "" {
		rec.Identity = textutil.DeriveIdentity(filepath.Base(folder))
	}
	rec.UpdatedAt = s.now().UTC().Format(time.RFC3339)

	data, err := toml.Marshal(rec)
	if err != nil {
		return rec, fmt.Errorf("encode sidecar: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.Path(folder), data, 0o644); err != nil {
		return rec, fmt.Errorf("write sidecar: %w", err)
	}
	return rec, nil
}

func decode(data []byte) (ProjectRecord, error) {
	var rec ProjectRecord
	if strings.TrimSpace(string(data)) == "" {
		return rec, errors.New("parse sidecar: empty file")
	}
	if err := toml.Unmarshal(data, &rec); err != nil {
		return ProjectRecord{}, fmt.Errorf("parse sidecar: %w", err)
	}
	rec.Identity = strings.TrimSpace(rec.Identity)
	return rec, nil
}
