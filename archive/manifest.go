package archive

import (
	"fmt"
	"time"

	"golang.org/x/mod/semver"
)

// FormatVersion is the manifest format written by this package. Readers
// accept any manifest with the same major version.
const FormatVersion = "v1.2.0"

// ManifestName is the manifest blob name within a run directory.
const ManifestName = "MANIFEST.json"

// Entry describes one stored block.
type Entry struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	RawSize     int64  `json:"raw_size"`
	Compression string `json:"compression"`
	// Checksum is the CRC32C of the stored block.
	Checksum uint32 `json:"checksum"`
}

// EventEntry describes one archived event.
type EventEntry struct {
	Event    int    `json:"event"`
	Hits     int    `json:"hits"`
	Tracks   int    `json:"tracks"`
	Clusters int    `json:"clusters"`
	Dropped  int    `json:"dropped,omitempty"`
	Input    Entry  `json:"input"`
	Result   *Entry `json:"result,omitempty"`
	// TrackFile holds the tracks in the text replay format. Added in v1.2.0.
	TrackFile *Entry `json:"track_file,omitempty"`
}

// Manifest lists the blobs of one run.
type Manifest struct {
	Format    string            `json:"format"`
	RunID     string            `json:"run_id"`
	CreatedAt time.Time         `json:"created_at"`
	Labels    map[string]string `json:"labels,omitempty"`
	Settings  Entry             `json:"settings"`
	Events    []EventEntry      `json:"events"`
}

// Find returns the entry of event, or false.
func (m *Manifest) Find(event int) (*EventEntry, bool) {
	for i := range m.Events {
		if m.Events[i].Event == event {
			return &m.Events[i], true
		}
	}
	return nil, false
}

// CheckFormat reports whether a reader of FormatVersion can read m.
func (m *Manifest) CheckFormat() error {
	if !semver.IsValid(m.Format) {
		return fmt.Errorf("%w: invalid version %q", ErrIncompatibleFormat, m.Format)
	}
	if semver.Major(m.Format) != semver.Major(FormatVersion) {
		return fmt.Errorf("%w: %s, reader supports %s", ErrIncompatibleFormat, m.Format, semver.Major(FormatVersion))
	}
	return nil
}

func runDir(runID string) string { return "runs/" + runID + "/" }

func eventName(event int) string { return fmt.Sprintf("event-%06d.blk", event) }

func resultName(event int) string { return fmt.Sprintf("result-%06d.blk", event) }

func tracksName(event int) string { return fmt.Sprintf("tracks-%06d.blk", event) }
