package docparse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// VisionAnalyzer extracts text from images, typically backed by a
// multimodal LLM.
type VisionAnalyzer interface {
	AnalyzeImage(ctx context.Context, imageData []byte, mimeType string, prompt string) (string, error)
}

const imagePrompt = `Extract all text and content from this image.
If it contains:
- Handwritten notes: transcribe them
- Diagrams: describe them in detail
- Formulas: write them in LaTeX or text format
- Tables: format them as markdown tables

Provide a comprehensive markdown representation of everything in the image.`

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// Parser extracts plain text from uploaded course materials. PDFs and
// text files are handled locally; images go through the vision analyzer.
type Parser struct {
	vision VisionAnalyzer
}

func New(vision VisionAnalyzer) *Parser {
	return &Parser{vision: vision}
}

// IsSupported reports whether a filename has a parseable extension.
// Uploads are rejected up front rather than failing in the worker.
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".pdf" || ext == ".txt" || ext == ".md" || ext == ".markdown" || imageExtensions[ext]
}

func (p *Parser) Parse(ctx context.Context, filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch {
	case ext == ".pdf":
		return parsePDF(filePath)
	case ext == ".txt" || ext == ".md" || ext == ".markdown":
		content, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(content), nil
	case imageExtensions[ext]:
		return p.parseImage(ctx, filePath, ext)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

func parsePDF(filePath string) (string, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages rather than losing the whole document
			continue
		}
		pages = append(pages, text)
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("no extractable text in pdf")
	}
	return strings.Join(pages, "\n\n"), nil
}

func (p *Parser) parseImage(ctx context.Context, filePath, ext string) (string, error) {
	if p.vision == nil {
		return "", fmt.Errorf("image parsing not available: no vision analyzer configured")
	}

	imageData, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	mimeType := "image/" + strings.TrimPrefix(ext, ".")
	if ext == ".jpg" {
		mimeType = "image/jpeg"
	}

	return p.vision.AnalyzeImage(ctx, imageData, mimeType, imagePrompt)
}
