// Package format identifies manuscript input formats.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// DOCX indicates a Microsoft Word (.docx) manuscript.
	DOCX
	// HTML indicates a manuscript saved as HTML.
	HTML
	// PDF is recognized so it can be rejected with a clear message.
	PDF
	// ODT is recognized so it can be rejected with a clear message.
	ODT
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case DOCX:
		return "DOCX"
	case HTML:
		return "HTML"
	case PDF:
		return "PDF"
	case ODT:
		return "ODT"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case DOCX:
		return ".docx"
	case HTML:
		return ".html"
	case PDF:
		return ".pdf"
	case ODT:
		return ".odt"
	default:
		return ""
	}
}

// Supported reports whether manuscripts in this format can be converted.
func (f Format) Supported() bool {
	return f == DOCX || f == HTML
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return DOCX
	case ".html", ".htm", ".xhtml":
		return HTML
	case ".pdf":
		return PDF
	case ".odt":
		return ODT
	default:
		return Unknown
	}
}

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	pdfMagic = []byte("%PDF")
)

// DetectFromMagic inspects document content. ZIP archives are opened to tell
// DOCX from other packaged formats.
func DetectFromMagic(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return PDF
	case bytes.HasPrefix(data, zipMagic):
		return detectZIPFormat(bytes.NewReader(data), int64(len(data)))
	case detectHTMLMagic(data):
		return HTML
	default:
		return Unknown
	}
}

// DetectFromReader reads r fully and inspects its content.
func DetectFromReader(r io.Reader) (Format, []byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Unknown, nil, err
	}
	return DetectFromMagic(data), data, nil
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(data) == 0 {
		return false
	}

	head := strings.ToUpper(string(data[:min(len(data), 1024)]))
	switch {
	case strings.HasPrefix(head, "<!DOCTYPE HTML"), strings.HasPrefix(head, "<HTML"):
		return true
	case strings.HasPrefix(head, "<?XML") && strings.Contains(head, "<HTML"):
		// XHTML
		return true
	case strings.HasPrefix(head, "<!--") && strings.Contains(head, "<HTML"):
		return true
	}
	return false
}

// detectZIPFormat inspects a ZIP archive to tell DOCX from ODT.
func detectZIPFormat(r io.ReaderAt, size int64) Format {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown
	}

	for _, f := range zr.File {
		switch {
		case f.Name == "mimetype":
			rc, err := f.Open()
			if err != nil {
				continue
			}
			head := make([]byte, 256)
			n, _ := io.ReadFull(rc, head)
			rc.Close()
			if strings.HasPrefix(string(head[:n]), "application/vnd.oasis.opendocument.text") {
				return ODT
			}
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX
		}
	}

	return Unknown
}
