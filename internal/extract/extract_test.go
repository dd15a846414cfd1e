package extract

import (
	"errors"
	"testing"
)

func TestExtractMarkdownStripsFrontmatter(t *testing.T) {
	input := []byte("---\ntitle: Calculus notes\ntopics:\n  - limits\n---\n# Limits\nA limit is...\n")
	r, err := Extract("calc.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ContentType != TypeMarkdown {
		t.Errorf("content type = %q", r.ContentType)
	}
	if r.Title != "Calculus notes" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Text != "# Limits\nA limit is...\n" {
		t.Errorf("text = %q", r.Text)
	}
}

func TestExtractMarkdownHeadingTitle(t *testing.T) {
	r, err := Extract("x.md", []byte("# Just a heading\nSome text.\n"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q", r.Title)
	}
}

func TestExtractMarkdownInvalidYAMLFallback(t *testing.T) {
	input := "---\n: invalid: yaml: {{{\n---\nBody\n"
	r, err := Extract("bad.md", []byte(input))
	if err != nil {
		t.Fatal(err)
	}
	if r.Text != input {
		t.Errorf("text = %q", r.Text)
	}
}

func TestExtractPlainText(t *testing.T) {
	r, err := Extract("wwi.txt", []byte("The war began in 1914."))
	if err != nil {
		t.Fatal(err)
	}
	if r.Text != "The war began in 1914." || r.Title != "wwi" {
		t.Errorf("result = %+v", r)
	}
}

func TestExtractPlainTextInvalidUTF8(t *testing.T) {
	if _, err := Extract("bin.txt", []byte{0xff, 0xfe, 0xfd}); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestExtractUnsupported(t *testing.T) {
	r, err := Extract("essay.docx", []byte("PK\x03\x04"))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v", err)
	}
	if r.ContentType != TypeDOCX {
		t.Errorf("content type = %q", r.ContentType)
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	r, err := Extract("broken.pdf", []byte("not a pdf"))
	if err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
	if r.ContentType != TypePDF {
		t.Errorf("content type = %q", r.ContentType)
	}
}

func TestContentTypeSniffing(t *testing.T) {
	if got := ContentType("README", []byte("hello world")); got != TypePlain {
		t.Errorf("got %q", got)
	}
}
