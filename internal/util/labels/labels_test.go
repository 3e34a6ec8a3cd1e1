package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLabelBuilder_Defaults(t *testing.T) {
	t.Parallel()
	got := NewLabelBuilder().Build()

	assert.Equal(t, map[string]string{
		KeyEnvironment: "dev",
		KeyProject:     "devops-lab",
		KeyOwner:       "platform-team",
		KeyManagedBy:   "devinfo",
	}, got)
}

func TestLabelBuilder_Overrides(t *testing.T) {
	t.Parallel()
	got := NewLabelBuilder().
		WithEnvironment("prod").
		WithProject("lab4").
		WithOwner("ops").
		WithManagedBy("ci").
		Build()

	assert.Equal(t, "prod", got[KeyEnvironment])
	assert.Equal(t, "lab4", got[KeyProject])
	assert.Equal(t, "ops", got[KeyOwner])
	assert.Equal(t, "ci", got[KeyManagedBy])
	assert.Len(t, got, len(Keys))
}

func TestLabelBuilder_EmptyOverrideIgnored(t *testing.T) {
	t.Parallel()
	got := NewLabelBuilder().WithOwner("").Build()
	assert.Equal(t, DefaultOwner, got[KeyOwner])
}

func TestLabelBuilder_BuildReturnsCopy(t *testing.T) {
	t.Parallel()
	lb := NewLabelBuilder()
	first := lb.Build()
	first[KeyOwner] = "mutated"

	second := lb.Build()
	assert.Equal(t, DefaultOwner, second[KeyOwner])
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		set     map[string]string
		wantErr bool
	}{
		{"defaults", NewLabelBuilder().Build(), false},
		{"dots and underscores", map[string]string{"a": "v1.2_x"}, false},
		{"empty value", map[string]string{"a": ""}, false},
		{"space", map[string]string{"a": "has space"}, true},
		{"leading dash", map[string]string{"a": "-x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tt.set)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()
	a := NewLabelBuilder().Build()
	b := NewLabelBuilder().Build()
	assert.True(t, Equal(a, b))

	b[KeyOwner] = "someone"
	assert.False(t, Equal(a, b))

	delete(b, KeyOwner)
	assert.False(t, Equal(a, b))
}

func TestSelector(t *testing.T) {
	t.Parallel()
	got := Selector(NewLabelBuilder().Build())
	assert.Equal(t, "environment=dev,managed_by=devinfo,owner=platform-team,project=devops-lab", got)
}
