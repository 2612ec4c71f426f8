package facematch

import "testing"

func TestScaleBox(t *testing.T) {
	box := BoundingBox{Top: 10, Right: 40, Bottom: 50, Left: 5}

	got := ScaleBox(box, 4)
	want := BoundingBox{Top: 40, Right: 160, Bottom: 200, Left: 20}
	if got != want {
		t.Errorf("ScaleBox(%+v, 4) = %+v, want %+v", box, got, want)
	}

	if got := ScaleBox(box, 1); got != box {
		t.Errorf("ScaleBox with factor 1 changed the box: %+v", got)
	}
}

func TestBoxFromCorners(t *testing.T) {
	tests := []struct {
		name   string
		bbox   []float64
		want   BoundingBox
		wantOK bool
	}{
		{
			name:   "valid corners",
			bbox:   []float64{10.2, 20.6, 110.5, 140},
			want:   BoundingBox{Left: 10, Top: 21, Right: 111, Bottom: 140},
			wantOK: true,
		},
		{name: "too short", bbox: []float64{1, 2, 3}},
		{name: "empty", bbox: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BoxFromCorners(tt.bbox)
			if ok != tt.wantOK {
				t.Fatalf("BoxFromCorners(%v) ok = %v, want %v", tt.bbox, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("BoxFromCorners(%v) = %+v, want %+v", tt.bbox, got, tt.want)
			}
		})
	}
}
