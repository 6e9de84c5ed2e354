package calendar

import "testing"

func TestNew_LevelOrder(t *testing.T) {
	cal, err := New("fiscal", []string{"year", "quarter", "month"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cal.ID() != "fiscal" {
		t.Errorf("expected id fiscal, got %q", cal.ID())
	}

	levels := cal.Levels()
	if len(levels) != 3 || levels[0] != "year" || levels[2] != "month" {
		t.Errorf("unexpected levels: %v", levels)
	}
}

func TestNew_RejectsDuplicateLevels(t *testing.T) {
	_, err := New("fiscal", []string{"year", "month", "year"})
	if err == nil {
		t.Fatal("expected error for duplicate level")
	}
}

func TestNew_RejectsEmpty(t *testing.T) {
	if _, err := New("", []string{"year"}); err == nil {
		t.Error("expected error for empty id")
	}
	if _, err := New("fiscal", nil); err == nil {
		t.Error("expected error for no levels")
	}
	if _, err := New("fiscal", []string{"year", ""}); err == nil {
		t.Error("expected error for empty level name")
	}
}

func TestCalendar_Finer(t *testing.T) {
	cal, err := New("fiscal", []string{"year", "quarter", "month"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		a, b string
		want bool
	}{
		{"month", "year", true},
		{"month", "quarter", true},
		{"quarter", "year", true},
		{"year", "month", false},
		{"month", "month", false},
		{"week", "year", false}, // unknown level
		{"month", "week", false},
	}
	for _, tc := range cases {
		if got := cal.Finer(tc.a, tc.b); got != tc.want {
			t.Errorf("Finer(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCalendar_Depth(t *testing.T) {
	cal, _ := New("fiscal", []string{"year", "quarter", "month"})

	if d, ok := cal.Depth("quarter"); !ok || d != 1 {
		t.Errorf("Depth(quarter) = %d, %v; want 1, true", d, ok)
	}
	if _, ok := cal.Depth("week"); ok {
		t.Error("expected Depth(week) to report missing level")
	}
}
