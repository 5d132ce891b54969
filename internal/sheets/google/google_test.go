package google

import "testing"

func TestSheetName(t *testing.T) {
	tests := []struct {
		name string
		base string
		year int
		want string
	}{
		{"plain base gets year prefix", "Hydration", 2024, "2024 Hydration"},
		{"already prefixed base kept", "2023 Hydration", 2024, "2023 Hydration"},
		{"short base gets prefix", "Agua", 2024, "2024 Agua"},
		{"numeric-looking base without space gets prefix", "20240", 2024, "2024 20240"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{sheetBase: tt.base}
			if got := c.sheetName(tt.year); got != tt.want {
				t.Errorf("sheetName(%d) = %q, want %q", tt.year, got, tt.want)
			}
		})
	}
}

func TestToStrings(t *testing.T) {
	got := toStrings([]any{" 2024-03-13 ", 250, 70.5})
	want := []string{"2024-03-13", "250", "70.5"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("toStrings()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
