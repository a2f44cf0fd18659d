package dispatcher

// Role identifies one of the four endpoint profiles a peer holds.
type Role int

const (
	// RoleS is the small/fast endpoint: tiny client-to-server bursts,
	// reliable.
	RoleS Role = iota

	// RoleM is the mid endpoint: bidirectional, moderate traffic,
	// reliable. Carries piggybacked secondary headers.
	RoleM

	// RoleB is the big endpoint: large server-to-client payloads,
	// reliable.
	RoleB

	// RoleU is the unreliable broadcast endpoint: fan-out to all peers.
	RoleU
)

func (r Role) String() string {
	switch r {
	case RoleS:
		return "S"
	case RoleM:
		return "M"
	case RoleB:
		return "B"
	case RoleU:
		return "U"
	default:
		return "unknown"
	}
}
