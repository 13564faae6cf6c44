package school

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectBackend(t *testing.T) {
	tests := []struct {
		name    string
		desktop bool
		marker  string
		want    Backend
	}{
		{name: "desktop flag", desktop: true, want: Persistent},
		{name: "desktop flag wins over a false marker", desktop: true, marker: "false", want: Persistent},
		{name: "marker", marker: "true", want: Persistent},
		{name: "marker is case-insensitive", marker: " TRUE ", want: Persistent},
		{name: "false marker", marker: "false", want: Ephemeral},
		{name: "garbage marker", marker: "yes", want: Ephemeral},
		{name: "nothing", want: Ephemeral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectBackend(tt.desktop, tt.marker))
		})
	}
}

func TestBackends_Service(t *testing.T) {
	p, e := &Service{}, &Service{}
	b := Backends{Persistent: p, Ephemeral: e}
	assert.Same(t, p, b.Service(Persistent))
	assert.Same(t, e, b.Service(Ephemeral))
	assert.Equal(t, "persistent", Persistent.String())
	assert.Equal(t, "ephemeral", Ephemeral.String())
}
