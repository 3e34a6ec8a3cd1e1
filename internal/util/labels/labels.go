package labels

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Standard label keys.
const (
	KeyEnvironment = "environment"
	KeyProject     = "project"
	KeyOwner       = "owner"
	KeyManagedBy   = "managed_by"
)

// Default label values.
const (
	DefaultEnvironment = "dev"
	DefaultProject     = "devops-lab"
	DefaultOwner       = "platform-team"
	ManagedByDevinfo   = "devinfo"
)

// Keys lists the standard label keys in a stable order.
var Keys = []string{KeyEnvironment, KeyProject, KeyOwner, KeyManagedBy}

// Hetzner label values: up to 63 chars, alphanumeric at both ends,
// dashes, underscores and dots in between.
var valuePattern = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9._-]{0,61}[a-zA-Z0-9])?)?$`)

// LabelBuilder builds the standard label set.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a builder pre-filled with the default values.
func NewLabelBuilder() *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyEnvironment: DefaultEnvironment,
			KeyProject:     DefaultProject,
			KeyOwner:       DefaultOwner,
			KeyManagedBy:   ManagedByDevinfo,
		},
	}
}

// WithEnvironment overrides the environment label. Empty values are ignored.
func (lb *LabelBuilder) WithEnvironment(env string) *LabelBuilder {
	return lb.set(KeyEnvironment, env)
}

// WithProject overrides the project label. Empty values are ignored.
func (lb *LabelBuilder) WithProject(project string) *LabelBuilder {
	return lb.set(KeyProject, project)
}

// WithOwner overrides the owner label. Empty values are ignored.
func (lb *LabelBuilder) WithOwner(owner string) *LabelBuilder {
	return lb.set(KeyOwner, owner)
}

// WithManagedBy overrides the managed_by label. Empty values are ignored.
func (lb *LabelBuilder) WithManagedBy(manager string) *LabelBuilder {
	return lb.set(KeyManagedBy, manager)
}

func (lb *LabelBuilder) set(key, value string) *LabelBuilder {
	if value != "" {
		lb.labels[key] = value
	}
	return lb
}

// Build returns a copy of the labels.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// Validate checks every value against the provider's label value rules.
func Validate(set map[string]string) error {
	for _, k := range sortedKeys(set) {
		if !valuePattern.MatchString(set[k]) {
			return fmt.Errorf("invalid value %q for label %s", set[k], k)
		}
	}
	return nil
}

// Equal reports whether two label sets hold the same pairs.
func Equal(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// Selector returns a label selector matching every pair in set,
// e.g. "environment=dev,managed_by=devinfo".
func Selector(set map[string]string) string {
	parts := make([]string, 0, len(set))
	for _, k := range sortedKeys(set) {
		parts = append(parts, k+"="+set[k])
	}
	return strings.Join(parts, ",")
}

func sortedKeys(set map[string]string) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
