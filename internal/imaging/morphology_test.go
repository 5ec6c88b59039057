package imaging

import (
	"reflect"
	"testing"
)

func TestDilate_RectangleFootprint(t *testing.T) {
	m := NewMask(20, 20)
	m.Set(10, 10, true)

	tests := []struct {
		name           string
		kw, kh         int
		x0, y0, x1, y1 int // inclusive expected extent
	}{
		{"odd kernel", 5, 3, 8, 9, 12, 11},
		{"even kernel", 4, 2, 9, 10, 12, 11},
		{"1x1 kernel", 1, 1, 10, 10, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Dilate(m, tt.kw, tt.kh, 1)
			want := (tt.x1 - tt.x0 + 1) * (tt.y1 - tt.y0 + 1)
			if got := d.Count(d.Bounds()); got != want {
				t.Errorf("foreground count: got %d, want %d", got, want)
			}
			if !d.At(tt.x0, tt.y0) || !d.At(tt.x1, tt.y1) {
				t.Errorf("expected corners (%d,%d) and (%d,%d) set", tt.x0, tt.y0, tt.x1, tt.y1)
			}
		})
	}
}

func TestDilate_Iterations(t *testing.T) {
	m := NewMask(30, 30)
	m.Set(15, 15, true)

	d := Dilate(m, 3, 3, 2)
	if got := d.Count(d.Bounds()); got != 25 {
		t.Errorf("two 3x3 iterations: got %d foreground, want 25", got)
	}

	if d0 := Dilate(m, 3, 3, 0); !reflect.DeepEqual(d0.Pix, m.Pix) || d0 == m {
		t.Error("zero iterations should return an equal copy")
	}
}

func TestDilate_DoesNotModifyInput(t *testing.T) {
	m := NewMask(10, 10)
	m.Set(5, 5, true)
	Dilate(m, 3, 3, 1)
	if m.Count(m.Bounds()) != 1 {
		t.Error("Dilate modified its input")
	}
}

func TestErode_InvertsDilateOnSinglePixel(t *testing.T) {
	m := NewMask(20, 20)
	m.Set(7, 12, true)

	e := Erode(Dilate(m, 5, 3, 1), 5, 3, 1)
	if !reflect.DeepEqual(e.Pix, m.Pix) {
		t.Errorf("erode(dilate(p)) != p:\n%v", maskRows(e))
	}
}

func TestErode_BorderIgnoresOutside(t *testing.T) {
	m := maskFromRows(
		"###.",
		"###.",
		"....",
	)
	e := Erode(m, 3, 1, 1)
	want := []string{
		"##..",
		"##..",
		"....",
	}
	if got := maskRows(e); !reflect.DeepEqual(got, want) {
		t.Errorf("Erode:\ngot  %v\nwant %v", got, want)
	}
}

func TestClose_BridgesGap(t *testing.T) {
	m := maskFromRows(
		"..............",
		"....##..##....",
		"..............",
	)
	c := Close(m, 5, 1)
	want := []string{
		"..............",
		"....######....",
		"..............",
	}
	if got := maskRows(c); !reflect.DeepEqual(got, want) {
		t.Errorf("Close:\ngot  %v\nwant %v", got, want)
	}
}
