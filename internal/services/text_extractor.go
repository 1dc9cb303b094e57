package services

import (
	"errors"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var ErrUnsupportedFormat = errors.New("text extraction not supported for this format")

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br[^>]*/>`)
	docxTab          = regexp.MustCompile(`<w:tab[^>]*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

type TextExtractor interface {
	ExtractText(filePath, mimeType string) (string, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

func (e *textExtractor) ExtractText(filePath, mimeType string) (string, error) {
	var (
		text string
		err  error
	)

	switch mimeType {
	case MIMEPDF:
		text, err = extractPDF(filePath)
	case MIMEDocx:
		text, err = extractDocx(filePath)
	case MIMEText:
		var data []byte
		data, err = os.ReadFile(filePath)
		if err != nil {
			err = fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if text == "" {
		return "", errors.New("no text content found in document")
	}

	return text, nil
}

func extractPDF(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// skip unreadable pages
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

func extractDocx(filePath string) (string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer r.Close()

	return docxXMLToText(r.Editable().GetContent()), nil
}

func docxXMLToText(content string) string {
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}

// CleanText trims every line and collapses runs of blank lines into one
// paragraph break.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var cleanedLines []string
	blank := false

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			blank = len(cleanedLines) > 0
			continue
		}
		if blank {
			cleanedLines = append(cleanedLines, "")
			blank = false
		}
		cleanedLines = append(cleanedLines, line)
	}

	return strings.Join(cleanedLines, "\n")
}
