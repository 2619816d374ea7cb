package models

import "time"

// Template represents the DM_TEMPLATE table: the one registered, unfilled
// AcroForm PDF for a document type. Uploading a new file replaces the row in
// full; no version history is kept.
type Template struct {
	DocumentType DocumentType `db:"DOCUMENT_TYPE" json:"documentType"`
	BlobID       string       `db:"BLOB_ID" json:"blobId"`
	Filename     string       `db:"FILENAME" json:"filename"`
	UploadedAt   time.Time    `db:"UPLOADED_AT" json:"uploadedAt"`
}

// TemplateResponse is the API envelope for template lookups. Exists is false
// when no template is registered for the type, which is a valid state.
type TemplateResponse struct {
	Exists       bool         `json:"exists"`
	DocumentType DocumentType `json:"documentType"`
	BlobID       string       `json:"blobId,omitempty"`
	Filename     string       `json:"filename,omitempty"`
	UploadedAt   *time.Time   `json:"uploadedAt,omitempty"`
}

// ToTemplateResponse converts a Template to its API envelope
func (t *Template) ToTemplateResponse() *TemplateResponse {
	uploadedAt := t.UploadedAt
	return &TemplateResponse{
		Exists:       true,
		DocumentType: t.DocumentType,
		BlobID:       t.BlobID,
		Filename:     t.Filename,
		UploadedAt:   &uploadedAt,
	}
}

// MissingTemplateResponse builds the envelope for an unregistered type
func MissingTemplateResponse(documentType DocumentType) *TemplateResponse {
	return &TemplateResponse{
		Exists:       false,
		DocumentType: documentType,
	}
}

// TemplateListResponse represents the template inventory for the admin screen
type TemplateListResponse struct {
	Templates []TemplateResponse `json:"templates"`
	Total     int                `json:"total"`
}

// FieldKind classifies a template field for the editing dialog
type FieldKind string

const (
	// FieldKindText is a single-line text field
	FieldKindText FieldKind = "text"
	// FieldKindDate is a text field whose name or format declares a date
	FieldKindDate FieldKind = "date"
	// FieldKindNumber is a text field with a numeric format
	FieldKindNumber FieldKind = "number"
	// FieldKindTextarea is a multiline text field
	FieldKindTextarea FieldKind = "textarea"
	// FieldKindUnknown covers buttons, choices, signatures and anything else
	// the dialog cannot fill; kept in the schema for visibility only
	FieldKindUnknown FieldKind = "unknown"
)

// SchemaField is one entry of a template's derived field schema, in document
// order. The schema is regenerated on every fetch and never persisted.
type SchemaField struct {
	Name         string    `json:"name"`
	Kind         FieldKind `json:"kind"`
	ReadOnly     bool      `json:"readOnly"`
	DefaultValue string    `json:"defaultValue,omitempty"`
}

// Fillable reports whether the dialog should offer an input for the field
func (f *SchemaField) Fillable() bool {
	return f.Kind != FieldKindUnknown && !f.ReadOnly
}

// TemplateFieldsResponse is the payload of the field-schema endpoint
type TemplateFieldsResponse struct {
	DocumentType  DocumentType      `json:"documentType"`
	Fields        []SchemaField     `json:"fields"`
	InitialValues map[string]string `json:"initialValues,omitempty"`
}
