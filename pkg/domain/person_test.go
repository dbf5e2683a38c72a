package domain

import "testing"

func TestFullName(t *testing.T) {
	tests := []struct {
		name   string
		person Person
		want   string
	}{
		{"both names", Person{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{"first only", Person{FirstName: "Ada"}, "Ada"},
		{"last only", Person{LastName: "Lovelace"}, "Lovelace"},
		{"empty", Person{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.person.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}
