package security

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeZIP  = "application/zip"
	mimeBin  = "application/octet-stream"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Detected file extension
	DetectedMIME string // MIME type sniffed from content
	Error        string // Error message if validation failed
}

type cvType struct {
	mime  string
	magic [][]byte
	// sniffed lists content types accepted from mimetype detection
	sniffed []string
}

// Allowed CV types (strict whitelist), keyed by lowercase extension
var cvTypes = map[string]cvType{
	".pdf": {
		mime:    MIMEPDF,
		magic:   [][]byte{{0x25, 0x50, 0x44, 0x46}}, // %PDF
		sniffed: []string{MIMEPDF},
	},
	".docx": {
		mime:  MIMEDOCX,
		magic: [][]byte{{0x50, 0x4B, 0x03, 0x04}}, // ZIP (PK..)
		// Minimal DOCX files may not be recognized beyond the zip container
		sniffed: []string{MIMEDOCX, mimeZIP},
	},
}

// ValidateCV performs 4-layer validation of an uploaded CV:
// 1. Extension whitelist check
// 2. Declared Content-Type must match the extension (octet-stream counts as undeclared)
// 3. Magic byte verification (content matches extension)
// 4. Sniffed MIME type must match the extension
func ValidateCV(filename, declaredMIME string, data []byte) FileValidationResult {
	var result FileValidationResult

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension; only PDF and DOCX files are allowed"
		return result
	}
	result.Extension = ext

	// Layer 1: Extension whitelist
	t, ok := cvTypes[ext]
	if !ok {
		result.Error = "file type not allowed: " + ext + "; only PDF and DOCX files are allowed"
		return result
	}

	// Layer 2: Declared type
	declared := normalizeMIME(declaredMIME)
	if declared != "" && declared != mimeBin && declared != t.mime {
		result.Error = "declared content type not allowed: " + declared + "; only PDF and DOCX files are allowed"
		return result
	}

	// Layer 3: Magic bytes
	if !validateMagicBytes(t, data) {
		result.Error = "file content does not match extension (potential file spoofing detected)"
		return result
	}

	// Layer 4: Content sniffing
	detected := mimetype.Detect(data)
	result.DetectedMIME = detected.String()
	if !sniffMatches(t, detected) {
		result.Error = "file content type not allowed: " + result.DetectedMIME
		return result
	}

	result.Valid = true
	return result
}

// validateMagicBytes checks if file content starts with expected magic bytes
func validateMagicBytes(t cvType, data []byte) bool {
	if len(data) < 4 {
		return false // File too small to validate
	}
	for _, sig := range t.magic {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

func sniffMatches(t cvType, detected *mimetype.MIME) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range t.sniffed {
			if m.Is(allowed) {
				return true
			}
		}
	}
	return false
}

func normalizeMIME(v string) string {
	if i := strings.IndexByte(v, ';'); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}

// AllowedCVExtensions returns the accepted extensions for error messages
func AllowedCVExtensions() []string {
	return []string{".pdf", ".docx"}
}
