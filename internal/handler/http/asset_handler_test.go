package http

import "testing"

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{",,", nil},
		{"travel", []string{"travel"}},
		{"travel,beach", []string{"travel", "beach"}},
		{" travel , beach ,", []string{"travel", "beach"}},
	}

	for _, tt := range tests {
		got := parseTags(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parseTags(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseTags(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
