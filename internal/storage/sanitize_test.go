package storage

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"notes.pdf", "notes.pdf"},
		{"../../etc/passwd", "etc_passwd"},
		{`..\..\win.ini`, "win.ini"},
		{"/abs/path/file.txt", "abs_path_file.txt"},
		{"my notes (v2).txt", "my_notes__v2_.txt"},
		{".env", "env"},
		{"..", ""},
		{"...", ""},
		{"   ", ""},
		{"", ""},
		{"???", ""},
	}
	for _, c := range cases {
		if got := Sanitize(c.in); got != c.want {
			t.Errorf("Sanitize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeTruncatesKeepingExtension(t *testing.T) {
	got := Sanitize(strings.Repeat("a", 300) + ".pdf")
	if len(got) != maxNameLen {
		t.Errorf("len = %d", len(got))
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("extension lost: %q", got[len(got)-8:])
	}
}
