package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceLocalPaths(t *testing.T) {
	tests := []struct {
		name   string
		joined string
		want   []string
	}{
		{name: "empty", joined: "", want: nil},
		{name: "single path", joined: "uploads/a.pdf", want: []string{"uploads/a.pdf"}},
		{name: "several paths", joined: "uploads/a.pdf;uploads/b.png", want: []string{"uploads/a.pdf", "uploads/b.png"}},
		{name: "blank segments dropped", joined: "uploads/a.pdf;; ;", want: []string{"uploads/a.pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resource{LocalPath: tt.joined}
			assert.Equal(t, tt.want, r.LocalPaths())
		})
	}
}

func TestJoinPaths(t *testing.T) {
	assert.Equal(t, "a;b", JoinPaths([]string{"a", "b"}))
	assert.Equal(t, "", JoinPaths(nil))
}

func TestResourceApplyDefaults(t *testing.T) {
	r := &Resource{}
	r.ApplyDefaults()
	assert.Equal(t, ResourceKindOther, r.Kind)
	assert.True(t, IsValidResourceKind(ResourceKindDrive))
	assert.False(t, IsValidResourceKind("drive"))
}
