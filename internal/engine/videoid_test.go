package engine

import "testing"

func TestResolveVideoID(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   VideoRef
		wantOK bool
	}{
		{"bare id", "Zxs7Rf2rWxc", "Zxs7Rf2rWxc", true},
		{"bare id with dash and underscore", "a-b_c-d_e-f", "a-b_c-d_e-f", true},
		{"bare id surrounded by whitespace", "  Zxs7Rf2rWxc\n", "Zxs7Rf2rWxc", true},
		{"short link", "https://youtu.be/Zxs7Rf2rWxc", "Zxs7Rf2rWxc", true},
		{"short link with trailing slash", "https://youtu.be/Zxs7Rf2rWxc/", "Zxs7Rf2rWxc", true},
		{"short link with query", "https://youtu.be/Zxs7Rf2rWxc?si=abc", "Zxs7Rf2rWxc", true},
		{"watch url", "https://www.youtube.com/watch?v=Zxs7Rf2rWxc", "Zxs7Rf2rWxc", true},
		{"watch url with timestamp", "https://www.youtube.com/watch?v=Zxs7Rf2rWxc&t=10s", "Zxs7Rf2rWxc", true},
		{"mobile watch url", "https://m.youtube.com/watch?v=Zxs7Rf2rWxc", "Zxs7Rf2rWxc", true},
		{"shorts", "https://www.youtube.com/shorts/Zxs7Rf2rWxc", "Zxs7Rf2rWxc", true},
		{"embed", "https://www.youtube.com/embed/Zxs7Rf2rWxc", "Zxs7Rf2rWxc", true},
		{"free text", "not a url or id", "", false},
		{"empty", "", "", false},
		{"ten chars", "Zxs7Rf2rWx", "", false},
		{"other host", "https://vimeo.com/123456789", "", false},
		{"short link without id", "https://youtu.be/", "", false},
		{"shorts without id", "https://www.youtube.com/shorts/", "", false},
		{"channel page", "https://www.youtube.com/@golang", "", false},
		{"broken escape", "%zz", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveVideoID(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ResolveVideoID(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
