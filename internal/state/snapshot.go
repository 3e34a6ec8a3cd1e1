package state

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// SnapshotVersion is the current snapshot format.
const SnapshotVersion = 1

// Snapshot is the persisted record of one stack.
type Snapshot struct {
	Version   int               `yaml:"version"`
	Stack     string            `yaml:"stack"`
	CloudID   string            `yaml:"cloud_id"`
	FolderID  string            `yaml:"folder_id"`
	RunID     string            `yaml:"run_id"`
	UpdatedAt time.Time         `yaml:"updated_at"`
	Resources []ResourceState   `yaml:"resources"`
	Exports   map[string]string `yaml:"exports,omitempty"`
}

// ResourceState is one created resource.
type ResourceState struct {
	URN        string            `yaml:"urn"`
	Kind       string            `yaml:"kind"`
	ID         string            `yaml:"id"`
	DependsOn  []string          `yaml:"depends_on,omitempty"`
	Inputs     map[string]string `yaml:"inputs,omitempty"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
}

// NewSnapshot returns an empty snapshot for a stack.
func NewSnapshot(stack, cloudID, folderID string) *Snapshot {
	return &Snapshot{
		Version:  SnapshotVersion,
		Stack:    stack,
		CloudID:  cloudID,
		FolderID: folderID,
	}
}

// Find returns the record for urn.
func (s *Snapshot) Find(urn string) (*ResourceState, bool) {
	for i := range s.Resources {
		if s.Resources[i].URN == urn {
			return &s.Resources[i], true
		}
	}
	return nil, false
}

// Upsert replaces the record with the same URN or appends rs.
func (s *Snapshot) Upsert(rs ResourceState) {
	if existing, ok := s.Find(rs.URN); ok {
		*existing = rs
		return
	}
	s.Resources = append(s.Resources, rs)
}

// Remove drops the record for urn.
func (s *Snapshot) Remove(urn string) {
	out := s.Resources[:0]
	for _, r := range s.Resources {
		if r.URN != urn {
			out = append(out, r)
		}
	}
	s.Resources = out
}

// Encode serializes s as YAML.
func Encode(s *Snapshot) ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return out, nil
}

// Decode parses a YAML snapshot.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d (want %d)", s.Version, SnapshotVersion)
	}
	return &s, nil
}
