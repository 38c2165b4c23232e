package csvsource

import "testing"

func TestValidUTF8Prefix(t *testing.T) {
	tests := []struct {
		name      string
		in        []byte
		truncated bool
		want      bool
	}{
		{"ascii", []byte("hello"), false, true},
		{"latin1", []byte("caf\xe9"), false, false},
		{"cut rune at block end", []byte("caf\xc3"), true, true},
		{"cut rune at file end", []byte("caf\xc3"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validUTF8Prefix(tt.in, tt.truncated); got != tt.want {
				t.Errorf("validUTF8Prefix(%q, %v) = %v, want %v", tt.in, tt.truncated, got, tt.want)
			}
		})
	}
}
