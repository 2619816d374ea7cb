package models

import "fmt"

// DocumentType is the closed set of administrative documents the portal can
// issue. Each type maps to exactly one registered template.
type DocumentType string

const (
	// DocTypeAdeverintaFinalizareStagiu certifies completion of the internship stage
	DocTypeAdeverintaFinalizareStagiu DocumentType = "adeverinta_finalizare_stagiu"
	// DocTypeAdeverintaStudent certifies active student status
	DocTypeAdeverintaStudent DocumentType = "adeverinta_student"
	// DocTypeDeclaratieStudent is the student's own declaration
	DocTypeDeclaratieStudent DocumentType = "declaratie_student"
	// DocTypeDeclaratieDatePersonale is the personal-data processing declaration,
	// shared across all students
	DocTypeDeclaratieDatePersonale DocumentType = "declaratie_date_personale"
	// DocTypeDeclaratieConsimtamant is the consent declaration, shared across
	// all students
	DocTypeDeclaratieConsimtamant DocumentType = "declaratie_consimtamant"
)

// DocumentTypeDescriptor carries per-type behavior so that components dispatch
// through this table instead of branching on raw strings.
type DocumentTypeDescriptor struct {
	Type        DocumentType
	DisplayName string
	// Shared marks declaration templates that are issued identically to every
	// student, with no per-student field bindings.
	Shared bool
}

// documentTypeRegistry holds the descriptor for every known type.
// Registration happens at init time; the set is closed.
var documentTypeRegistry = map[DocumentType]*DocumentTypeDescriptor{}

func init() {
	for _, d := range []*DocumentTypeDescriptor{
		{Type: DocTypeAdeverintaFinalizareStagiu, DisplayName: "Adeverință finalizare stagiu"},
		{Type: DocTypeAdeverintaStudent, DisplayName: "Adeverință student"},
		{Type: DocTypeDeclaratieStudent, DisplayName: "Declarație student"},
		{Type: DocTypeDeclaratieDatePersonale, DisplayName: "Declarație prelucrare date personale", Shared: true},
		{Type: DocTypeDeclaratieConsimtamant, DisplayName: "Declarație de consimțământ", Shared: true},
	} {
		documentTypeRegistry[d.Type] = d
	}
}

// GetDocumentTypeDescriptor returns the descriptor for a document type.
// Returns an error for types outside the closed set.
func GetDocumentTypeDescriptor(t DocumentType) (*DocumentTypeDescriptor, error) {
	d, ok := documentTypeRegistry[t]
	if !ok {
		return nil, fmt.Errorf("unknown document type %q", t)
	}
	return d, nil
}

// ParseDocumentType validates a raw string against the closed enumeration
func ParseDocumentType(raw string) (DocumentType, error) {
	t := DocumentType(raw)
	if _, ok := documentTypeRegistry[t]; !ok {
		return "", fmt.Errorf("unknown document type %q", raw)
	}
	return t, nil
}

// AllDocumentTypes returns every registered document type in a stable order
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocTypeAdeverintaFinalizareStagiu,
		DocTypeAdeverintaStudent,
		DocTypeDeclaratieStudent,
		DocTypeDeclaratieDatePersonale,
		DocTypeDeclaratieConsimtamant,
	}
}
