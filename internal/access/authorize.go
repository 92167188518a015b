package access

// Decision is the outcome of gating a protected resource.
type Decision int

const (
	// Unauthenticated means no session is present; the caller must send
	// the client to login.
	Unauthenticated Decision = iota
	// Denied means a session is present but fails the role or permission
	// check; the caller must render an access-denied response carrying the
	// session's actual role and the roles that would have sufficed.
	Denied
	// Allowed means the protected resource may be served.
	Allowed
)

func (d Decision) String() string {
	switch d {
	case Unauthenticated:
		return "unauthenticated"
	case Denied:
		return "denied"
	case Allowed:
		return "allowed"
	default:
		return "unknown"
	}
}

// Authorize decides whether the session may access a resource guarded by
// the given role and permission requirements. An empty requirement list
// places no restriction on that axis. Authentication is checked before
// either axis, so a missing session is Unauthenticated even when both
// lists are empty.
//
// Pure function of its inputs; callers re-evaluate it per request rather
// than caching, since a session's role or permissions can change between
// requests.
func Authorize(s *Session, requiredRoles, requiredPermissions []string) Decision {
	if s == nil {
		return Unauthenticated
	}
	if !s.HasAnyRole(requiredRoles) {
		return Denied
	}
	if !s.HasAllPermissions(requiredPermissions) {
		return Denied
	}
	return Allowed
}
