package flatten

import "testing"

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorF
		wantErr bool
	}{
		{"red", ColorF{R: 1, A: 1}, false},
		{"#00ff00", ColorF{G: 1, A: 1}, false},
		{"#fff", White, false},
		{"#00000000", Transparent, false},
		{"0 0 1", ColorF{B: 1, A: 1}, false},
		{"1 1 1 0.5", ColorF{R: 1, G: 1, B: 1, A: 0.5}, false},
		{"#12345", ColorF{}, true},
		{"nope", ColorF{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFontRenderModeLimitBy(t *testing.T) {
	tests := []struct {
		a, b, want FontRenderMode
	}{
		{FontRenderSubpixel, FontRenderAlpha, FontRenderAlpha},
		{FontRenderMono, FontRenderSubpixel, FontRenderMono},
		{FontRenderAlpha, FontRenderAlpha, FontRenderAlpha},
	}
	for _, tt := range tests {
		if got := tt.a.LimitBy(tt.b); got != tt.want {
			t.Errorf("%v.LimitBy(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFontRenderModeUnmarshalText(t *testing.T) {
	var m FontRenderMode
	if err := m.UnmarshalText([]byte("Alpha")); err != nil || m != FontRenderAlpha {
		t.Errorf("UnmarshalText(Alpha) = %v, %v", m, err)
	}
	if err := m.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("UnmarshalText(bogus) should fail")
	}
}
