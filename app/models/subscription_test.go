package models

import "testing"

func TestNormalizeServiceName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Netflix", want: "netflix"},
		{in: "net flix", want: "netflix"},
		{in: "  NET  FLIX  ", want: "netflix"},
		{in: "Disney+", want: "disney+"},
		{in: "HBO Max", want: "hbomax"},
	}

	for _, tt := range tests {
		if got := NormalizeServiceName(tt.in); got != tt.want {
			t.Fatalf("NormalizeServiceName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAlertTypeForDays(t *testing.T) {
	for days, want := range map[int]string{15: AlertReminder15, 7: AlertReminder7, 3: AlertReminder3} {
		got, ok := AlertTypeForDays(days)
		if !ok || got != want {
			t.Fatalf("AlertTypeForDays(%d) = %q, %v; want %q", days, got, ok, want)
		}
	}
	for _, days := range []int{0, 1, 2, 4, 8, 14, 16, -3} {
		if _, ok := AlertTypeForDays(days); ok {
			t.Fatalf("AlertTypeForDays(%d) should not match a threshold", days)
		}
	}
}
