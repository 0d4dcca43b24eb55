package domain

import (
	"path/filepath"
	"strings"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromFilename returns the tabular format implied by the file extension.
func FormatFromFilename(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, true
	case ".xlsx":
		return FormatXLSX, true
	default:
		return "", false
	}
}

type Attachment struct {
	Filename  string
	MessageID string
	Subject   string
	Source    string
	Format    Format
	Content   []byte
	Hash      string // filled by the transformer
}
