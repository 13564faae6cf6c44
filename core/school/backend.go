package school

import "strings"

// DesktopHeader marks a request sent by the desktop shell.
const DesktopHeader = "X-Desktop"

type Backend int

const (
	Ephemeral Backend = iota
	Persistent
)

func (b Backend) String() string {
	if b == Persistent {
		return "persistent"
	}
	return "ephemeral"
}

// SelectBackend picks the store answering a request. The process-wide desktop flag wins,
// then the request's DesktopHeader marker; anything else is served from memory.
func SelectBackend(desktopMode bool, marker string) Backend {
	if desktopMode {
		return Persistent
	}
	if strings.EqualFold(strings.TrimSpace(marker), "true") {
		return Persistent
	}
	return Ephemeral
}

// Backends holds one Service per backend for the lifetime of the process.
type Backends struct {
	Persistent *Service
	Ephemeral  *Service
}

func (b Backends) Service(kind Backend) *Service {
	if kind == Persistent {
		return b.Persistent
	}
	return b.Ephemeral
}
