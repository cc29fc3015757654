package rbac

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name string
		role string
		want bool
	}{
		{name: "admin — допустимая", role: RoleAdmin, want: true},
		{name: "manager — допустимая", role: RoleManager, want: true},
		{name: "worker — допустимая", role: RoleWorker, want: true},
		{name: "пустая строка", role: "", want: false},
		{name: "неизвестная роль", role: "superuser", want: false},
		{name: "регистр имеет значение", role: "Admin", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidRole(tt.role); got != tt.want {
				t.Errorf("IsValidRole(%q) = %v, хотели %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestHasAnyRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		want    bool
	}{
		{name: "роль в наборе", role: RoleManager, allowed: []string{RoleAdmin, RoleManager}, want: true},
		{name: "роль не в наборе", role: RoleWorker, allowed: []string{RoleAdmin, RoleManager}, want: false},
		{name: "пустой набор", role: RoleAdmin, allowed: nil, want: false},
		{name: "единственная роль", role: RoleAdmin, allowed: []string{RoleAdmin}, want: true},
		{name: "все роли", role: RoleWorker, allowed: []string{RoleAdmin, RoleManager, RoleWorker}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasAnyRole(tt.role, tt.allowed...); got != tt.want {
				t.Errorf("HasAnyRole(%q, %v) = %v, хотели %v", tt.role, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestAtLeast(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		minimum string
		want    bool
	}{
		{name: "admin не ниже worker", role: RoleAdmin, minimum: RoleWorker, want: true},
		{name: "admin не ниже admin", role: RoleAdmin, minimum: RoleAdmin, want: true},
		{name: "manager ниже admin", role: RoleManager, minimum: RoleAdmin, want: false},
		{name: "worker ниже manager", role: RoleWorker, minimum: RoleManager, want: false},
		{name: "неизвестная роль не проходит", role: "superuser", minimum: RoleWorker, want: false},
		{name: "пустая роль не проходит", role: "", minimum: RoleWorker, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AtLeast(tt.role, tt.minimum); got != tt.want {
				t.Errorf("AtLeast(%q, %q) = %v, хотели %v", tt.role, tt.minimum, got, tt.want)
			}
		})
	}
}
