package roles

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"admin", Admin, true},
		{"staff", Staff, true},
		{"student", Student, true},
		{"", "", false},
		{"Admin", "", false},
		{"superuser", "", false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q) = (%q, %v); want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIn(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		allowed []Role
		want    bool
	}{
		{"admin in admin-only", Admin, []Role{Admin}, true},
		{"staff in admin-only", Staff, []Role{Admin}, false},
		{"staff in admin+staff", Staff, []Role{Admin, Staff}, true},
		{"student in admin+staff", Student, []Role{Admin, Staff}, false},
		{"empty allow list passes any valid role", Student, nil, true},
		{"empty allow list rejects unknown role", Role("ghost"), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.In(tt.allowed...); got != tt.want {
				t.Errorf("%q.In(%v) = %v, want %v", tt.role, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestPrivileged(t *testing.T) {
	if !Admin.Privileged() || !Staff.Privileged() {
		t.Error("admin and staff must be privileged")
	}
	if Student.Privileged() {
		t.Error("student must not be privileged")
	}
}
