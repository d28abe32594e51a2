package authz

import (
	"testing"

	"github.com/filmlot/sessiond/internal/domain"
)

func boolPtr(v bool) *bool { return &v }

func TestProject_NilProfile(t *testing.T) {
	caps := Project(nil)
	if caps != (Capabilities{}) {
		t.Fatalf("nil profile must project to all-false, got %+v", caps)
	}
}

func TestProject_RoleDefaults(t *testing.T) {
	cases := []struct {
		role domain.Role
		want Capabilities
	}{
		{domain.RoleAdmin, Capabilities{true, true, true, true, true, true, true}},
		{domain.RoleManager, Capabilities{true, true, true, true, false, true, true}},
		{domain.RoleCoordinator, Capabilities{ViewDashboard: true, ManageLocations: true, ViewReports: true}},
		{domain.RoleViewer, Capabilities{ViewDashboard: true, ViewReports: true}},
	}
	for _, tc := range cases {
		got := Project(&domain.UserProfile{Role: tc.role, Active: true})
		if got != tc.want {
			t.Fatalf("role %s: got %+v want %+v", tc.role, got, tc.want)
		}
	}
}

func TestProject_OverridesTakePrecedence(t *testing.T) {
	p := &domain.UserProfile{
		Role:   domain.RoleViewer,
		Active: true,
		Overrides: &domain.CapabilityOverrides{
			ManageLocations: boolPtr(true),  // grant beyond role
			ViewReports:     boolPtr(false), // revoke a role default
		},
	}
	caps := Project(p)
	if !caps.ManageLocations {
		t.Fatal("override must grant manage_locations to a viewer")
	}
	if caps.ViewReports {
		t.Fatal("override must revoke view_reports")
	}
	if !caps.ViewDashboard {
		t.Fatal("untouched role default must survive")
	}
}

func TestHas(t *testing.T) {
	caps := Capabilities{ManageUsers: true}
	if !caps.Has(CapManageUsers) {
		t.Fatal("expected manage_users")
	}
	if caps.Has(CapExportReports) {
		t.Fatal("unexpected export_reports")
	}
	if caps.Has(Capability("made_up")) {
		t.Fatal("unknown capability must be false")
	}
}

func TestParseOverrides(t *testing.T) {
	o, err := ParseOverrides([]byte(`{"manage_users":true,"view_reports":false}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.ManageUsers == nil || !*o.ManageUsers {
		t.Fatal("expected manage_users=true")
	}
	if o.ViewReports == nil || *o.ViewReports {
		t.Fatal("expected view_reports=false")
	}
	if o.ViewDashboard != nil {
		t.Fatal("absent keys must stay nil")
	}
}

func TestParseOverrides_RejectsUnknownKeys(t *testing.T) {
	if _, err := ParseOverrides([]byte(`{"superuser":true}`)); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParseOverrides_EmptyAndNull(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(""), []byte("null")} {
		o, err := ParseOverrides(raw)
		if err != nil || o != nil {
			t.Fatalf("raw %q: got (%+v, %v), want (nil, nil)", raw, o, err)
		}
	}
}
