package normalize

import (
	"reflect"
	"testing"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  Crédito Rotativo ", want: "CREDITO ROTATIVO"},
		{in: "pão de açúcar", want: "PAO DE ACUCAR"},
		{in: "NETFLIX.COM", want: "NETFLIX.COM"},
	}

	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWords(t *testing.T) {
	got := Words("Pag*José da Silva ME")
	want := []string{"pag", "jose", "silva"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Words = %v, want %v", got, want)
	}
}

func TestCompact(t *testing.T) {
	if got := Compact("Pag*Netflix.com"); got != "pagnetflixcom" {
		t.Errorf("Compact = %q", got)
	}
}
