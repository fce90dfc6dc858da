// Package office implements the format converter for Office
// word-processing documents (.docx).
package office

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
	"github.com/inkwell-sync/inkwell/internal/converters/textutil"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

// Converter handles .docx documents.
type Converter struct{}

// New creates a new Office document converter.
func New() *Converter {
	return &Converter{}
}

// Name returns the converter name for logging.
func (c *Converter) Name() string {
	return "office"
}

// SupportedExtensions returns the file extensions this converter handles.
func (c *Converter) SupportedExtensions() []string {
	return []string{".docx"}
}

// Convert extracts the document text, applies the shared markup
// heuristics and prepends the metadata block.
func (c *Converter) Convert(_ context.Context, inputPath string) (*driven.ConvertResult, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, &domain.ConversionError{Path: inputPath, Reason: "reading input", Err: err}
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &domain.ConversionError{Path: inputPath, Reason: "not a valid docx archive", Err: err}
	}

	content, found, err := extractDocumentText(reader)
	if err != nil {
		return nil, &domain.ConversionError{Path: inputPath, Reason: "extracting document text", Err: err}
	}
	if !found {
		return nil, &domain.ConversionError{Path: inputPath, Reason: "missing word/document.xml"}
	}

	props := extractProperties(reader)

	sum := sha256.Sum256(data)
	fileName := filepath.Base(inputPath)

	var out strings.Builder
	out.WriteString(textutil.MetadataBlock(fileName, int64(len(data)), "docx", props))
	out.WriteString(textutil.Render(content))

	return &driven.ConvertResult{
		Text:       out.String(),
		Checksum:   hex.EncodeToString(sum[:]),
		Properties: props,
	}, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// extractDocumentText extracts paragraph text from word/document.xml.
// The second return value reports whether the part was present.
func extractDocumentText(reader *zip.Reader) (string, bool, error) {
	raw, err := readArchiveFile(reader, "word/document.xml")
	if err != nil {
		return "", false, err
	}
	if raw == nil {
		return "", false, nil
	}

	var doc documentXML
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", true, fmt.Errorf("parsing document.xml: %w", err)
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, text := range r.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String()), true, nil
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
}

// appXML represents the structure of docProps/app.xml.
type appXML struct {
	Pages string `xml:"Pages"`
	Words string `xml:"Words"`
}

// extractProperties pulls format-specific metadata from the document
// property parts. Missing parts are not an error.
func extractProperties(reader *zip.Reader) map[string]string {
	props := make(map[string]string)

	if raw, err := readArchiveFile(reader, "docProps/core.xml"); err == nil && raw != nil {
		var core coreXML
		if err := xml.Unmarshal(raw, &core); err == nil {
			if core.Title != "" {
				props["title"] = strings.TrimSpace(core.Title)
			}
			if core.Creator != "" {
				props["author"] = strings.TrimSpace(core.Creator)
			}
		}
	}

	if raw, err := readArchiveFile(reader, "docProps/app.xml"); err == nil && raw != nil {
		var app appXML
		if err := xml.Unmarshal(raw, &app); err == nil {
			if app.Pages != "" {
				props["pages"] = strings.TrimSpace(app.Pages)
			}
			if app.Words != "" {
				props["words"] = strings.TrimSpace(app.Words)
			}
		}
	}

	return props
}

// readArchiveFile reads one file from the archive, or nil if absent.
func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		return content, nil
	}
	return nil, nil
}
