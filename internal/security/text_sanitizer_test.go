package security

import "testing"

func TestClean_StripsAllTags(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"script tag", `<script>alert("xss")</script>Parasite`, "Parasite"},
		{"img tag", `The Matrix<img src="https://evil.example/x.png">`, "The Matrix"},
		{"nested markup", `<b><i>Seven</i> Samurai</b>`, "Seven Samurai"},
		{"plain text untouched", "Spirited Away", "Spirited Away"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClean_RestoresEntities(t *testing.T) {
	s := NewTextSanitizer()

	// StrictPolicyのエスケープ結果を復元し、記号入りタイトルを保持する
	tests := []struct {
		input string
		want  string
	}{
		{"Fast & Furious", "Fast & Furious"},
		{"Fast &amp; Furious", "Fast & Furious"},
		{"What's Up, Doc?", "What's Up, Doc?"},
	}

	for _, tt := range tests {
		if got := s.Clean(tt.input); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestClean_TrimsWhitespace(t *testing.T) {
	s := NewTextSanitizer()

	if got := s.Clean("  The Godfather \n"); got != "The Godfather" {
		t.Errorf("Clean = %q, want %q", got, "The Godfather")
	}
}

func TestClean_Idempotent(t *testing.T) {
	s := NewTextSanitizer()

	input := `<em>Cléo</em> from 5 to 7 & more`
	once := s.Clean(input)
	twice := s.Clean(once)

	if once != twice {
		t.Errorf("Cleanは冪等でなければならない: once=%q twice=%q", once, twice)
	}
}
