package access

import "testing"

// --- Authorize ---

func TestAuthorize_AdminPassesEverything(t *testing.T) {
	sess := &Session{ID: "u1", Role: RoleAdmin}

	cases := []struct {
		name  string
		roles []string
		perms []string
	}{
		{"no restrictions", nil, nil},
		{"roles the admin does not hold", []string{"compliance_officer", "auditor"}, nil},
		{"permissions the admin does not hold", nil, []string{"view_fraud", "export_reports"}},
		{"both axes restricted", []string{"analyst"}, []string{"manage_alerts"}},
	}
	for _, tc := range cases {
		if d := Authorize(sess, tc.roles, tc.perms); d != Allowed {
			t.Fatalf("%s: expected Allowed for admin, got %v", tc.name, d)
		}
	}
}

func TestAuthorize_AdminWithEmptyPermissionsStillPasses(t *testing.T) {
	// The override is all-or-nothing: an admin with an explicitly empty
	// permission set passes permission checks it does not literally hold.
	sess := &Session{ID: "u1", Role: RoleAdmin, Permissions: []string{}}
	if d := Authorize(sess, nil, []string{"view_fraud"}); d != Allowed {
		t.Fatalf("expected Allowed, got %v", d)
	}
}

func TestAuthorize_NonAdminDeniedOnRoleMismatch(t *testing.T) {
	sess := &Session{ID: "u2", Role: RoleViewer}
	if d := Authorize(sess, []string{RoleAdmin, RoleComplianceOfficer}, nil); d != Denied {
		t.Fatalf("expected Denied for viewer, got %v", d)
	}
}

func TestAuthorize_NilSessionIsUnauthenticated(t *testing.T) {
	// Authentication is checked before either axis: even with no role
	// restriction a missing session is Unauthenticated, never Allowed.
	if d := Authorize(nil, []string{}, []string{}); d != Unauthenticated {
		t.Fatalf("expected Unauthenticated for empty requirements, got %v", d)
	}
	if d := Authorize(nil, []string{"admin"}, []string{"view_risk"}); d != Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", d)
	}
}

func TestAuthorize_RoleMatchAllows(t *testing.T) {
	sess := &Session{ID: "u3", Role: RoleAnalyst}
	if d := Authorize(sess, []string{RoleAnalyst, RoleComplianceOfficer}, nil); d != Allowed {
		t.Fatalf("expected Allowed, got %v", d)
	}
}

func TestAuthorize_PermissionCheck(t *testing.T) {
	sess := &Session{
		ID:          "u4",
		Role:        RoleAnalyst,
		Permissions: []string{"view_fraud", "view_compliance"},
	}

	if d := Authorize(sess, nil, []string{"view_fraud"}); d != Allowed {
		t.Fatalf("expected Allowed for held permission, got %v", d)
	}
	if d := Authorize(sess, nil, []string{"view_fraud", "manage_alerts"}); d != Denied {
		t.Fatalf("expected Denied for missing permission, got %v", d)
	}
}

func TestAuthorize_BothAxesMustPass(t *testing.T) {
	sess := &Session{ID: "u5", Role: RoleAnalyst, Permissions: []string{"view_risk"}}

	if d := Authorize(sess, []string{RoleViewer}, []string{"view_risk"}); d != Denied {
		t.Fatalf("expected Denied on role mismatch despite permission match, got %v", d)
	}
	if d := Authorize(sess, []string{RoleAnalyst}, []string{"view_fraud"}); d != Denied {
		t.Fatalf("expected Denied on permission mismatch despite role match, got %v", d)
	}
	if d := Authorize(sess, []string{RoleAnalyst}, []string{"view_risk"}); d != Allowed {
		t.Fatalf("expected Allowed when both axes pass, got %v", d)
	}
}

// --- Query helpers ---

func TestHasRole(t *testing.T) {
	sess := &Session{Role: RoleAnalyst}
	if !sess.HasRole(RoleAnalyst) {
		t.Fatal("expected analyst to hold analyst role")
	}
	if sess.HasRole(RoleViewer) {
		t.Fatal("expected analyst not to hold viewer role")
	}

	admin := &Session{Role: RoleAdmin}
	if !admin.HasRole("any_role_at_all") {
		t.Fatal("expected admin to satisfy every role check")
	}

	var nilSess *Session
	if nilSess.HasRole(RoleAdmin) {
		t.Fatal("expected nil session to hold no role")
	}
}

func TestHasAnyRole(t *testing.T) {
	sess := &Session{Role: RoleViewer}
	if !sess.HasAnyRole(nil) {
		t.Fatal("expected empty role list to pass for any session")
	}
	if !sess.HasAnyRole([]string{RoleAnalyst, RoleViewer}) {
		t.Fatal("expected match on second role")
	}
	if sess.HasAnyRole([]string{RoleAnalyst, RoleComplianceOfficer}) {
		t.Fatal("expected no match")
	}

	var nilSess *Session
	if nilSess.HasAnyRole(nil) {
		t.Fatal("expected nil session to fail even the empty check")
	}
}

func TestHasPermission_EmptySetIsAlwaysFalse(t *testing.T) {
	sess := &Session{Role: RoleAnalyst, Permissions: []string{}}
	for _, tag := range []string{"view_risk", "view_fraud", "manage_users", ""} {
		if sess.HasPermission(tag) {
			t.Fatalf("expected false for %q on empty permission set", tag)
		}
	}

	var nilSess *Session
	if nilSess.HasPermission("view_risk") {
		t.Fatal("expected nil session to hold no permission")
	}
}

func TestHasAllPermissions(t *testing.T) {
	sess := &Session{Role: RoleAnalyst, Permissions: []string{"p1", "p2"}}

	// Conjunction of the individual checks.
	if got := sess.HasAllPermissions([]string{"p1", "p2"}); got != (sess.HasPermission("p1") && sess.HasPermission("p2")) {
		t.Fatal("HasAllPermissions disagrees with the conjunction of HasPermission")
	}
	if !sess.HasAllPermissions([]string{"p1", "p2"}) {
		t.Fatal("expected true when both tags are held")
	}
	if sess.HasAllPermissions([]string{"p1", "p3"}) {
		t.Fatal("expected false when one tag is missing")
	}

	// Vacuously true on the empty list.
	if !sess.HasAllPermissions(nil) {
		t.Fatal("expected vacuous truth for empty permission list")
	}
	if !(&Session{Role: RoleViewer}).HasAllPermissions([]string{}) {
		t.Fatal("expected vacuous truth for session without grants")
	}
}

func TestIsSuperUser(t *testing.T) {
	if !IsSuperUser(&Session{Role: RoleAdmin}) {
		t.Fatal("expected admin to be super user")
	}
	if IsSuperUser(&Session{Role: RoleAnalyst}) {
		t.Fatal("expected analyst not to be super user")
	}
	if IsSuperUser(nil) {
		t.Fatal("expected nil session not to be super user")
	}
}

func TestDecisionString(t *testing.T) {
	cases := map[Decision]string{
		Unauthenticated: "unauthenticated",
		Denied:          "denied",
		Allowed:         "allowed",
		Decision(99):    "unknown",
	}
	for d, want := range cases {
		if got := d.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}
