// Package autofill derives field values for a document template from the
// student and application records. Bindings are a fixed table per document
// type; field names not in the table stay unresolved and are left to the
// operator.
package autofill

import (
	"strings"
	"time"

	"github.com/stagiu-portal/document-management-api/internal/models"
	"github.com/stagiu-portal/document-management-api/pkg/utils"
)

// bindingContext is the read-only input of a single binding
type bindingContext struct {
	student     *models.StudentRecord
	application *models.ApplicationRecord
	now         time.Time
}

// binding produces the value for one well-known field name.
// Returning "" means the binding could not resolve.
type binding func(ctx bindingContext) string

// fieldBinding pairs a well-known field name with its binding
type fieldBinding struct {
	field   string
	resolve binding
}

// bindingTable maps each document type to its auto-fill rule set. The shared
// declaration types carry no bindings: those documents are issued identically
// for every student.
var bindingTable = map[models.DocumentType][]fieldBinding{
	models.DocTypeAdeverintaFinalizareStagiu: {
		{field: "student_full_name", resolve: fullName},
		{field: "universitate", resolve: fromApplication(func(a *models.ApplicationRecord) string { return a.Institutie })},
		{field: "facultate", resolve: fromApplication(func(a *models.ApplicationRecord) string { return a.Facultate })},
		{field: "specializare", resolve: fromApplication(func(a *models.ApplicationRecord) string { return a.Specializare })},
		{field: "adeverinta_date", resolve: currentDate},
	},
	models.DocTypeAdeverintaStudent: {
		{field: "student_full_name", resolve: fullName},
		{field: "universitate", resolve: fromApplication(func(a *models.ApplicationRecord) string { return a.Institutie })},
		{field: "facultate", resolve: fromApplication(func(a *models.ApplicationRecord) string { return a.Facultate })},
		{field: "specializare", resolve: fromApplication(func(a *models.ApplicationRecord) string { return a.Specializare })},
		{field: "an_studiu", resolve: fromApplication(func(a *models.ApplicationRecord) string { return a.AnStudiu })},
		{field: "adeverinta_date", resolve: currentDate},
	},
	models.DocTypeDeclaratieStudent: {
		{field: "student_full_name", resolve: fullName},
		{field: "cnp", resolve: fromStudent(func(s *models.StudentRecord) string { return s.CNP })},
		{field: "adresa", resolve: fromStudent(func(s *models.StudentRecord) string { return s.Address })},
		{field: "email", resolve: studentEmail},
		{field: "declaratie_date", resolve: currentDate},
	},
	models.DocTypeDeclaratieDatePersonale: nil,
	models.DocTypeDeclaratieConsimtamant:  nil,
}

// Resolve derives the auto-fill values for a document type using the current
// date for date bindings. Pure apart from the clock; see ResolveAt.
func Resolve(documentType models.DocumentType, student *models.StudentRecord, application *models.ApplicationRecord) map[string]string {
	return ResolveAt(documentType, student, application, time.Now())
}

// ResolveAt is Resolve with an explicit clock
func ResolveAt(documentType models.DocumentType, student *models.StudentRecord, application *models.ApplicationRecord, now time.Time) map[string]string {
	ctx := bindingContext{student: student, application: application, now: now}

	values := make(map[string]string)
	for _, b := range bindingTable[documentType] {
		if v := strings.TrimSpace(b.resolve(ctx)); v != "" {
			values[b.field] = v
		}
	}
	return values
}

// SeedValues builds the initial fill state for a schema. Precedence per
// field, highest first: server-supplied initial values, resolver output, the
// field's own default from the PDF. Only fillable fields are seeded.
func SeedValues(schema []models.SchemaField, initialValues, resolved map[string]string) map[string]string {
	seeded := make(map[string]string, len(schema))
	for _, field := range schema {
		if !field.Fillable() {
			continue
		}
		switch {
		case initialValues[field.Name] != "":
			seeded[field.Name] = initialValues[field.Name]
		case resolved[field.Name] != "":
			seeded[field.Name] = resolved[field.Name]
		case field.DefaultValue != "":
			seeded[field.Name] = field.DefaultValue
		default:
			seeded[field.Name] = ""
		}
	}
	return seeded
}

// fullName joins the application's given and family names, falling back to
// the student record when no application exists
func fullName(ctx bindingContext) string {
	if ctx.application != nil {
		name := strings.TrimSpace(ctx.application.Prenume + " " + ctx.application.Nume)
		if name != "" {
			return name
		}
	}
	if ctx.student != nil {
		return ctx.student.FullName()
	}
	return ""
}

func studentEmail(ctx bindingContext) string {
	if ctx.application != nil && ctx.application.Email != "" {
		return ctx.application.Email
	}
	if ctx.student != nil {
		return ctx.student.Email
	}
	return ""
}

func currentDate(ctx bindingContext) string {
	return utils.FormatDate(ctx.now)
}

func fromApplication(get func(*models.ApplicationRecord) string) binding {
	return func(ctx bindingContext) string {
		if ctx.application == nil {
			return ""
		}
		return get(ctx.application)
	}
}

func fromStudent(get func(*models.StudentRecord) string) binding {
	return func(ctx bindingContext) string {
		if ctx.student == nil {
			return ""
		}
		return get(ctx.student)
	}
}
