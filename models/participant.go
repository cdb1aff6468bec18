package models

// ParticipantKind tags who is acting on a request.
type ParticipantKind string

const (
	ParticipantUser   ParticipantKind = "user"
	ParticipantDriver ParticipantKind = "driver"
)

type Capability string

const (
	CapReserve  Capability = "reserve"
	CapBook     Capability = "book"
	CapCancel   Capability = "cancel"
	CapComplete Capability = "complete"
	CapAnnotate Capability = "annotate"
	CapRead     Capability = "read"
)

var capabilities = map[ParticipantKind]map[Capability]bool{
	ParticipantUser: {
		CapReserve: true,
		CapBook:    true,
		CapCancel:  true,
		CapRead:    true,
	},
	ParticipantDriver: {
		CapComplete: true,
		CapAnnotate: true,
		CapRead:     true,
	},
}

// Participant is an authenticated caller.
type Participant struct {
	Kind ParticipantKind `json:"kind"`
	ID   string          `json:"id"`
}

// Can reports whether the participant's kind grants c.
func (p Participant) Can(c Capability) bool {
	return capabilities[p.Kind][c]
}

// ParseParticipantKind maps a token role claim to a kind.
func ParseParticipantKind(role string) (ParticipantKind, bool) {
	switch ParticipantKind(role) {
	case ParticipantUser, ParticipantDriver:
		return ParticipantKind(role), true
	}
	return "", false
}
