package auth

// Phase is the lifecycle phase of the session.
type Phase int

const (
	// PhaseInitializing is the state before the stored credential was inspected.
	PhaseInitializing Phase = iota
	// PhaseUnauthenticated means no usable credential is held.
	PhaseUnauthenticated
	// PhaseTentative means a stored snapshot is in use but the backend has not
	// yet confirmed the credential.
	PhaseTentative
	// PhaseConfirmed means the backend accepted the credential.
	PhaseConfirmed
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseTentative:
		return "tentative"
	case PhaseConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Settled reports whether the phase is final enough to make routing decisions.
func (p Phase) Settled() bool {
	return p == PhaseUnauthenticated || p == PhaseConfirmed
}
