// Package extract turns uploaded document bytes into plain searchable text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"gopkg.in/yaml.v3"
)

// Content types recognised by Extract.
const (
	TypePDF      = "application/pdf"
	TypeMarkdown = "text/markdown"
	TypePlain    = "text/plain"
	TypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupported is returned for formats without a text extractor.
var ErrUnsupported = errors.New("extract: unsupported format")

// Result holds the output of extracting a document.
type Result struct {
	ContentType string
	Title       string
	Text        string
	Pages       int
}

// ContentType guesses the content type from the extension, falling back to sniffing.
func ContentType(name string, data []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return TypePDF
	case ".md", ".markdown":
		return TypeMarkdown
	case ".txt", ".text":
		return TypePlain
	case ".docx":
		return TypeDOCX
	}
	ct := http.DetectContentType(data)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// Extract returns the plain text of data. The content type is always
// filled in, even when err is ErrUnsupported.
func Extract(name string, data []byte) (*Result, error) {
	res := &Result{ContentType: ContentType(name, data)}
	switch res.ContentType {
	case TypePDF:
		text, pages, err := pdfText(data)
		if err != nil {
			return res, err
		}
		res.Text, res.Pages = text, pages
	case TypeMarkdown:
		fm, body := splitFrontmatter(data)
		res.Text = body
		res.Title = deriveTitle(fm, body)
	case TypePlain:
		if !utf8.Valid(data) {
			return res, fmt.Errorf("extract: %s is not valid UTF-8", name)
		}
		res.Text = string(data)
	default:
		return res, fmt.Errorf("%w: %s", ErrUnsupported, res.ContentType)
	}
	if res.Title == "" {
		res.Title = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return res, nil
}

func pdfText(data []byte) (text string, pages int, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("extract: malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("extract: open pdf: %w", err)
	}
	var b strings.Builder
	total := r.NumPage()
	for n := 1; n <= total; n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(text)
	}
	return b.String(), total, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no valid frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	var fm map[string]any
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		return nil, string(data)
	}
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	return fm, body
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]any, body string) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
