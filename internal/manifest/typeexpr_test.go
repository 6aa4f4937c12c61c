package manifest

import (
	"testing"
)

func TestParseTypeExpr(t *testing.T) {
	vars := map[string]bool{"T": true, "U": true}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"constant", "Int", "Int"},
		{"variable", "T", "T"},
		{"application", "List<Int>", "List<Int>"},
		{"nested application", "Map<String, List<T>>", "Map<String, List<T>>"},
		{"tuple", "(Int, Bool)", "(Int, Bool)"},
		{"tuple of applications", "(List<T>, U)", "(List<T>, U)"},
		{"spaces tolerated", " Map< Int , T > ", "Map<Int, T>"},
		{"qualified constant", "std.Vec<T>", "std.Vec<T>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTypeExpr(tt.src, vars)
			if err != nil {
				t.Fatalf("ParseTypeExpr(%q): %v", tt.src, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseTypeExpr(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestParseTypeExprErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"unterminated args", "List<Int"},
		{"trailing junk", "Int>"},
		{"missing comma", "Map<Int Bool>"},
		{"unterminated tuple", "(Int, Bool"},
		{"bare operator", "<Int>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTypeExpr(tt.src, nil); err == nil {
				t.Errorf("ParseTypeExpr(%q) should fail", tt.src)
			}
		})
	}
}
