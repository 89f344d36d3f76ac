package points

import "testing"

func TestFor(t *testing.T) {
	tests := []struct {
		name string
		pos  int
		want int
	}{
		{name: "winner", pos: 1, want: 25},
		{name: "second", pos: 2, want: 18},
		{name: "last scoring", pos: 10, want: 1},
		{name: "just outside", pos: 11, want: 0},
		{name: "back of the grid", pos: 20, want: 0},
		{name: "zero", pos: 0, want: 0},
		{name: "negative", pos: -3, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := For(tt.pos); got != tt.want {
				t.Errorf("For(%d) = %d, want %d", tt.pos, got, tt.want)
			}
		})
	}
}

func TestForMonotonic(t *testing.T) {
	for p := 1; p < 10; p++ {
		if For(p) < For(p+1) {
			t.Errorf("points increase from P%d (%d) to P%d (%d)",
				p, For(p), p+1, For(p+1))
		}
	}
}
