package access

// Role tags recognized by the product. A session carries exactly one role.
const (
	RoleAdmin             = "admin"
	RoleAnalyst           = "analyst"
	RoleComplianceOfficer = "compliance_officer"
	RoleViewer            = "viewer"
)

// Permission tags for fine-grained grants. A session may carry any subset;
// an empty set means the session falls back to role checks alone.
const (
	PermViewRisk       = "view_risk"
	PermViewFraud      = "view_fraud"
	PermViewCompliance = "view_compliance"
	PermManageAlerts   = "manage_alerts"
	PermManageUsers    = "manage_users"
	PermExportReports  = "export_reports"
)

// Session represents the authenticated user, set by auth middleware.
// It is read-only for every consumer except the auth/admin update paths.
type Session struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

// IsSuperUser reports whether the session bypasses every role and
// permission check. All predicates in this package consult it first, so
// the admin override lives in exactly one place.
func IsSuperUser(s *Session) bool {
	return s != nil && s.Role == RoleAdmin
}

// HasRole checks whether the session holds the given role. Admin sessions
// satisfy every role check. A nil session never holds a role.
func (s *Session) HasRole(role string) bool {
	if s == nil {
		return false
	}
	if IsSuperUser(s) {
		return true
	}
	return s.Role == role
}

// HasAnyRole checks whether the session holds at least one of the given
// roles. An empty list places no restriction and passes for any session.
func (s *Session) HasAnyRole(roles []string) bool {
	if s == nil {
		return false
	}
	if len(roles) == 0 || IsSuperUser(s) {
		return true
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// HasPermission checks whether the session holds the given permission tag.
func (s *Session) HasPermission(perm string) bool {
	if s == nil {
		return false
	}
	if IsSuperUser(s) {
		return true
	}
	for _, p := range s.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// HasAllPermissions checks whether the session holds every given tag.
// An empty list is vacuously true for any non-nil session.
func (s *Session) HasAllPermissions(perms []string) bool {
	if s == nil {
		return false
	}
	if IsSuperUser(s) {
		return true
	}
	for _, p := range perms {
		if !s.HasPermission(p) {
			return false
		}
	}
	return true
}
