package core

import "testing"

func TestCalculateDailyGoal(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		want   int64
	}{
		{"typical weight", 70, 2450},
		{"lower bound", 30, 1050},
		{"upper bound", 200, 7000},
		{"below range falls back to default", 29.9, DefaultDailyGoal},
		{"above range falls back to default", 201, DefaultDailyGoal},
		{"zero falls back to default", 0, DefaultDailyGoal},
		{"fractional weight rounds", 70.5, 2468}, // 70.5 * 35 = 2467.5
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateDailyGoal(tt.weight); got != tt.want {
				t.Errorf("CalculateDailyGoal(%v) = %d, want %d", tt.weight, got, tt.want)
			}
		})
	}
}

func TestFormatVolume(t *testing.T) {
	tests := []struct {
		ml   int64
		want string
	}{
		{250, "250ml"},
		{999, "999ml"},
		{1000, "1.0L"},
		{2450, "2.5L"},
	}

	for _, tt := range tests {
		if got := FormatVolume(tt.ml); got != tt.want {
			t.Errorf("FormatVolume(%d) = %q, want %q", tt.ml, got, tt.want)
		}
	}
}

func TestProgressPercentage(t *testing.T) {
	if got := ProgressPercentage(500, 2000); got != 25 {
		t.Errorf("ProgressPercentage(500, 2000) = %v, want 25", got)
	}
	if got := ProgressPercentage(3000, 2000); got != 100 {
		t.Errorf("ProgressPercentage over goal = %v, want capped at 100", got)
	}
	if got := ProgressPercentage(500, 0); got != 0 {
		t.Errorf("ProgressPercentage with zero goal = %v, want 0", got)
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.DailyGoal != CalculateDailyGoal(DefaultWeight) {
		t.Errorf("default goal = %d, want %d", s.DailyGoal, CalculateDailyGoal(DefaultWeight))
	}
	if err := s.Validate(); err != nil {
		t.Errorf("default settings should validate: %v", err)
	}
}
