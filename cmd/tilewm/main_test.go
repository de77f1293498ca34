package main

import "testing"

func TestParseWindowID(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
		ok   bool
	}{
		{"42", 42, true},
		{"0x1a00007", 0x1a00007, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"4294967296", 0, false},
	}
	for _, tt := range tests {
		got, err := parseWindowID(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parseWindowID(%q) = %d, %v; want %d ok=%v", tt.in, got, err, tt.want, tt.ok)
		}
	}
}
