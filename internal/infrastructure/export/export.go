// Package export serializes a user's CRM data to JSON, YAML and XLSX, and
// reads customer lists back from XLSX.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/circlesoft/crm/internal/domain/crm"
	"gopkg.in/yaml.v3"
)

// Format is an export file format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts json, yaml/yml and xlsx, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Snapshot is the exported document
type Snapshot struct {
	UserID     string    `json:"userId"`
	ExportedAt time.Time `json:"exportedAt"`
	Data       *crm.Data `json:"data"`
}

// Encode renders the snapshot in the given format
func Encode(format Format, snap Snapshot) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(snap, "", "  ")
	case FormatYAML:
		return encodeYAML(snap)
	case FormatXLSX:
		return WriteWorkbook(snap.Data)
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

// encodeYAML goes through JSON so the YAML keys match the stored field names
func encodeYAML(snap Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName builds "crm-<user>-<timestamp><ext>"
func FileName(userID string, at time.Time, format Format) string {
	return fmt.Sprintf("crm-%s-%s%s", userID, at.UTC().Format("20060102-150405"), format.Extension())
}
