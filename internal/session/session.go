// Package session models one open document dialog for one (student,
// document type) pair: the field values being edited, the ephemeral preview
// or signed artifact, and the state machine gating generation and
// assignment. Each dialog gets its own Session; nothing here is shared
// between sessions.
package session

import (
	"errors"
	"sync"

	"github.com/stagiu-portal/document-management-api/internal/models"
)

// State is the session's position in the document dialog lifecycle
type State string

const (
	// StateNoTemplate means no template is registered for the document type.
	// A valid state: the operator is prompted to upload one.
	StateNoTemplate State = "NO_TEMPLATE"
	// StateTemplateReady means a schema has been loaded and seeded
	StateTemplateReady State = "TEMPLATE_READY"
	// StateFieldsIncomplete means at least one fillable field is still empty
	StateFieldsIncomplete State = "FIELDS_INCOMPLETE"
	// StateFieldsComplete means every fillable field holds a value
	StateFieldsComplete State = "FIELDS_COMPLETE"
	// StatePreviewGenerated means a generated artifact is held
	StatePreviewGenerated State = "PREVIEW_GENERATED"
	// StateSignedFileSelected means an operator-supplied signed file is held;
	// the fill state is no longer authoritative
	StateSignedFileSelected State = "SIGNED_FILE_SELECTED"
	// StateAssigned is terminal: the document has been committed
	StateAssigned State = "ASSIGNED"
)

var (
	// ErrSessionClosed is returned by every operation after Close
	ErrSessionClosed = errors.New("session is closed")

	// ErrSessionAssigned is returned for mutations after the commit
	ErrSessionAssigned = errors.New("session already assigned a document")

	// ErrOperationInFlight is returned when a second operation starts while
	// one is pending
	ErrOperationInFlight = errors.New("another operation is in flight")

	// ErrNoSchema is returned for field operations before a template is loaded
	ErrNoSchema = errors.New("no template schema loaded")

	// ErrUnknownField is returned when a value targets a field the schema
	// does not declare
	ErrUnknownField = errors.New("field is not part of the template schema")

	// ErrFieldsNotEditable is returned for edits while a signed file is
	// selected
	ErrFieldsNotEditable = errors.New("fields are not editable while a signed file is selected")

	// ErrNoArtifact is returned when assignment is requested with nothing to
	// commit
	ErrNoArtifact = errors.New("no artifact held for assignment")
)

// Session owns the mutable state of one editing dialog. All methods are safe
// for concurrent use; the single-flight guard additionally serializes the
// remote operations at the dialog level.
type Session struct {
	mu sync.Mutex

	documentType models.DocumentType
	studentID    string

	state    State
	schema   []models.SchemaField
	values   map[string]string
	artifact *Artifact

	inflight bool
	closed   bool
}

// New opens a session for one student and document type. The session starts
// without a template; ResetTemplate loads one.
func New(documentType models.DocumentType, studentID string) *Session {
	return &Session{
		documentType: documentType,
		studentID:    studentID,
		state:        StateNoTemplate,
		values:       make(map[string]string),
	}
}

// DocumentType returns the type the dialog was opened for
func (s *Session) DocumentType() models.DocumentType {
	return s.documentType
}

// StudentID returns the student the dialog was opened for
func (s *Session) StudentID() string {
	return s.studentID
}

// State returns the session's current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Alive reports whether the session can still accept results. Completion
// callbacks of in-flight requests must check this before writing back.
func (s *Session) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Begin claims the session's single operation slot. The returned release
// function must be called when the operation completes, successfully or not.
func (s *Session) Begin() (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.inflight {
		return nil, ErrOperationInFlight
	}
	s.inflight = true
	return func() {
		s.mu.Lock()
		s.inflight = false
		s.mu.Unlock()
	}, nil
}

// ResetTemplate loads a fresh schema and seeded fill state, discarding any
// held artifact and all previous values. Called on first load and whenever
// the template is replaced mid-session.
func (s *Session) ResetTemplate(schema []models.SchemaField, seed map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.state == StateAssigned {
		return ErrSessionAssigned
	}

	s.releaseArtifactLocked()
	s.schema = make([]models.SchemaField, len(schema))
	copy(s.schema, schema)
	s.values = make(map[string]string, len(seed))
	for name, value := range seed {
		s.values[name] = value
	}
	s.state = StateTemplateReady
	return nil
}

// SetValue records an operator edit. Editing moves the session back into the
// fields states; a held preview stays live until the next generation.
func (s *Session) SetValue(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	switch s.state {
	case StateAssigned:
		return ErrSessionAssigned
	case StateNoTemplate:
		return ErrNoSchema
	case StateSignedFileSelected:
		return ErrFieldsNotEditable
	}
	if !s.schemaHasLocked(field) {
		return ErrUnknownField
	}

	s.values[field] = value
	if s.completeLocked() {
		s.state = StateFieldsComplete
	} else {
		s.state = StateFieldsIncomplete
	}
	return nil
}

// Values returns a copy of the current fill state
func (s *Session) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.values))
	for name, value := range s.values {
		out[name] = value
	}
	return out
}

// Schema returns a copy of the loaded field schema
func (s *Session) Schema() []models.SchemaField {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SchemaField, len(s.schema))
	copy(out, s.schema)
	return out
}

// IsComplete reports whether every fillable field holds a non-empty value.
// A pure local predicate: the generation gate consults it before any remote
// call is made.
func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeLocked()
}

// MissingFields lists the fillable fields still empty, in schema order
func (s *Session) MissingFields() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var missing []string
	for i := range s.schema {
		field := &s.schema[i]
		if field.Fillable() && s.values[field.Name] == "" {
			missing = append(missing, field.Name)
		}
	}
	return missing
}

// HoldPreview replaces the session's artifact with a freshly generated one.
// The previous handle, if any, is released first so at most one stays live
// across repeated preview cycles. A preview handed to a dead session is
// released immediately and discarded.
func (s *Session) HoldPreview(artifact *Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		artifact.Close()
		return ErrSessionClosed
	}
	if s.state == StateAssigned {
		artifact.Close()
		return ErrSessionAssigned
	}
	if s.state == StateNoTemplate {
		artifact.Close()
		return ErrNoSchema
	}
	if !s.completeLocked() {
		artifact.Close()
		return models.ErrFieldsIncomplete
	}

	s.releaseArtifactLocked()
	s.artifact = artifact
	s.state = StatePreviewGenerated
	return nil
}

// SelectSignedFile replaces the session's artifact with an operator-supplied
// signed document, bypassing the completeness gate entirely
func (s *Session) SelectSignedFile(artifact *Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		artifact.Close()
		return ErrSessionClosed
	}
	if s.state == StateAssigned {
		artifact.Close()
		return ErrSessionAssigned
	}
	if s.state == StateNoTemplate {
		artifact.Close()
		return ErrNoSchema
	}

	s.releaseArtifactLocked()
	s.artifact = artifact
	s.state = StateSignedFileSelected
	return nil
}

// Artifact returns the currently held artifact, or nil
func (s *Session) Artifact() *Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifact
}

// MarkAssigned records a successful commit. Terminal: the session accepts no
// further mutations and the dialog closes.
func (s *Session) MarkAssigned() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.state == StateAssigned {
		return ErrSessionAssigned
	}
	if s.artifact == nil {
		return ErrNoArtifact
	}
	s.state = StateAssigned
	return nil
}

// Close tears the session down, releasing any held artifact. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseArtifactLocked()
	s.closed = true
	return nil
}

func (s *Session) completeLocked() bool {
	if len(s.schema) == 0 {
		return false
	}
	for i := range s.schema {
		field := &s.schema[i]
		if field.Fillable() && s.values[field.Name] == "" {
			return false
		}
	}
	return true
}

func (s *Session) schemaHasLocked(field string) bool {
	for i := range s.schema {
		if s.schema[i].Name == field && s.schema[i].Fillable() {
			return true
		}
	}
	return false
}

func (s *Session) releaseArtifactLocked() {
	if s.artifact != nil {
		s.artifact.Close()
		s.artifact = nil
	}
}
