package utils

import (
	"strings"
	"testing"
)

func TestValidateStudentID(t *testing.T) {
	tests := []struct {
		name      string
		studentID string
		wantErr   bool
	}{
		{name: "Valid ID", studentID: "STU-123", wantErr: false},
		{name: "Empty ID", studentID: "", wantErr: true},
		{name: "Too long", studentID: strings.Repeat("a", 256), wantErr: true},
		{name: "Max length", studentID: strings.Repeat("a", 255), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStudentID(tt.studentID)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStudentID(%q) error = %v, wantErr %v", tt.studentID, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{name: "Valid filename", filename: "adeverinta.pdf", wantErr: false},
		{name: "Empty filename", filename: "", wantErr: true},
		{name: "Whitespace only", filename: "   ", wantErr: true},
		{name: "Forward slash", filename: "a/b.pdf", wantErr: true},
		{name: "Backslash", filename: "a\\b.pdf", wantErr: true},
		{name: "Too long", filename: strings.Repeat("a", 252) + ".pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilename(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBlobID(t *testing.T) {
	tests := []struct {
		name    string
		blobID  string
		wantErr bool
	}{
		{name: "Valid key", blobID: "documents/2026/08/abc-123", wantErr: false},
		{name: "Empty key", blobID: "", wantErr: true},
		{name: "Traversal", blobID: "documents/../secrets", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBlobID(tt.blobID)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBlobID(%q) error = %v, wantErr %v", tt.blobID, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{name: "Zero uses default", limit: 0, expected: 20},
		{name: "Negative uses default", limit: -5, expected: 20},
		{name: "Within range", limit: 50, expected: 50},
		{name: "Capped at max", limit: 500, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateLimit(tt.limit); got != tt.expected {
				t.Errorf("ValidateLimit(%d) = %d, want %d", tt.limit, got, tt.expected)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Errorf("SanitizeString() = %q, want %q", got, "helloworld")
	}
}
