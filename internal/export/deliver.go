package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Format string

const (
	FormatPDF      Format = "pdf"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

var Formats = []Format{FormatPDF, FormatCSV, FormatMarkdown}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "pdf":
		return FormatPDF, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Artifact is a generated file held in memory.
type Artifact struct {
	FileName    string
	ContentType string
	Body        []byte
}

// FileName follows "<Name_With_Underscores>_<year>_Success_Blueprint.pdf"
// and "<Name>_<year>_Notion_Template.csv|md".
func FileName(f Format, userName string, year int) string {
	stem := fileStem(userName)
	switch f {
	case FormatCSV:
		return fmt.Sprintf("%s_%d_Notion_Template.csv", stem, year)
	case FormatMarkdown:
		return fmt.Sprintf("%s_%d_Notion_Template.md", stem, year)
	}
	return fmt.Sprintf("%s_%d_Success_Blueprint.pdf", stem, year)
}

// Generate runs the generator for f. It performs no I/O.
func Generate(f Format, in Input) (*Artifact, error) {
	a := &Artifact{FileName: FileName(f, in.UserName, in.Year)}
	switch f {
	case FormatPDF:
		var buf bytes.Buffer
		if err := RenderPDF(&buf, in); err != nil {
			return nil, err
		}
		a.ContentType = "application/pdf"
		a.Body = buf.Bytes()
	case FormatCSV:
		s, err := NotionCSV(in)
		if err != nil {
			return nil, err
		}
		a.ContentType = "text/csv"
		a.Body = []byte(s)
	case FormatMarkdown:
		s, err := NotionMarkdown(in)
		if err != nil {
			return nil, err
		}
		a.ContentType = "text/markdown"
		a.Body = []byte(s)
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
	return a, nil
}

// WriteFile stores a under dir and returns its path.
func WriteFile(dir string, a *Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, a.FileName)
	if err := os.WriteFile(path, a.Body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", a.FileName, err)
	}
	return path, nil
}
