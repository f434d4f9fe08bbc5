package intake

import (
	"testing"
)

func TestTokenize_Segments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]string // raw segment text per line
	}{
		{
			name: "plus-joined line",
			in:   "قميص احمر + L",
			want: [][]string{{"قميص احمر", "L"}},
		},
		{
			name: "dash-separated line",
			in:   "أحمد علي - بغداد - الكرادة",
			want: [][]string{{"أحمد علي", "بغداد", "الكرادة"}},
		},
		{
			name: "dashed phone stays whole",
			in:   "0770-1234567",
			want: [][]string{{"0770-1234567"}},
		},
		{
			name: "multiple lines",
			in:   "احمد\n07701234567",
			want: [][]string{{"احمد"}, {"07701234567"}},
		},
		{
			name: "blank lines dropped",
			in:   "احمد\n\n\nقميص",
			want: [][]string{{"احمد"}, {"قميص"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := Tokenize(Normalize(tt.in))
			if len(lines) != len(tt.want) {
				t.Fatalf("got %d lines, want %d", len(lines), len(tt.want))
			}
			for i, wantSegments := range tt.want {
				if len(lines[i].Segments) != len(wantSegments) {
					t.Fatalf("line %d: got %d segments %+v, want %d", i, len(lines[i].Segments), lines[i].Segments, len(wantSegments))
				}
				for j, want := range wantSegments {
					if lines[i].Segments[j].Raw != want {
						t.Errorf("line %d segment %d = %q, want %q", i, j, lines[i].Segments[j].Raw, want)
					}
				}
			}
		})
	}
}

func TestExtractQuantity(t *testing.T) {
	tests := []struct {
		in       string
		wantQty  int
		wantRest string
	}{
		{"قميص x2", 2, "قميص"},
		{"قميص ×2", 2, "قميص"},
		{"قميص × 2", 2, "قميص"},
		{"2x قميص", 2, "قميص"},
		{"قميص عدد 3", 3, "قميص"},
		{"قميص احمر", 1, "قميص احمر"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			qty, rest := extractQuantity(Fold(tt.in))
			if qty != tt.wantQty {
				t.Errorf("quantity = %d, want %d", qty, tt.wantQty)
			}
			if rest != Fold(tt.wantRest) {
				t.Errorf("remainder = %q, want %q", rest, Fold(tt.wantRest))
			}
		})
	}
}

func TestExtractBarcode(t *testing.T) {
	barcode, rest := extractBarcode("قميص 6291041500213")
	if barcode != "6291041500213" {
		t.Errorf("barcode = %q", barcode)
	}
	if rest != "قميص" {
		t.Errorf("remainder = %q", rest)
	}

	barcode, rest = extractBarcode("قميص 2")
	if barcode != "" {
		t.Errorf("short digit run taken as barcode: %q", barcode)
	}
	if rest != "قميص 2" {
		t.Errorf("remainder = %q", rest)
	}
}
