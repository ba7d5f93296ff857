package stock

import "testing"

func TestReleaseClamp(t *testing.T) {
	cases := []struct {
		reduc, qty, want int
	}{
		{10, 3, 7},
		{3, 3, 0},
		{2, 5, 0},
		{0, 1, 0},
	}
	for _, c := range cases {
		if got := releaseClamp(c.reduc, c.qty); got != c.want {
			t.Errorf("releaseClamp(%d, %d) = %d, want %d", c.reduc, c.qty, got, c.want)
		}
	}
}

func TestReserveClamp(t *testing.T) {
	cases := []struct {
		reduc, qty, stock, want int
	}{
		{0, 3, 10, 3},
		{8, 3, 10, 10},
		{10, 1, 10, 10},
	}
	for _, c := range cases {
		if got := reserveClamp(c.reduc, c.qty, c.stock); got != c.want {
			t.Errorf("reserveClamp(%d, %d, %d) = %d, want %d", c.reduc, c.qty, c.stock, got, c.want)
		}
	}
}
