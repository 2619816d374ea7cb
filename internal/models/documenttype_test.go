package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentType(t *testing.T) {
	for _, documentType := range AllDocumentTypes() {
		parsed, err := ParseDocumentType(string(documentType))
		require.NoError(t, err)
		assert.Equal(t, documentType, parsed)
	}

	_, err := ParseDocumentType("contract_munca")
	assert.Error(t, err)
	_, err = ParseDocumentType("")
	assert.Error(t, err)
}

func TestDocumentTypeDescriptors(t *testing.T) {
	for _, documentType := range AllDocumentTypes() {
		descriptor, err := GetDocumentTypeDescriptor(documentType)
		require.NoError(t, err)
		assert.Equal(t, documentType, descriptor.Type)
		assert.NotEmpty(t, descriptor.DisplayName)
	}

	shared, err := GetDocumentTypeDescriptor(DocTypeDeclaratieConsimtamant)
	require.NoError(t, err)
	assert.True(t, shared.Shared)

	personal, err := GetDocumentTypeDescriptor(DocTypeAdeverintaStudent)
	require.NoError(t, err)
	assert.False(t, personal.Shared)
}

func TestSchemaFieldFillable(t *testing.T) {
	assert.True(t, (&SchemaField{Name: "a", Kind: FieldKindText}).Fillable())
	assert.True(t, (&SchemaField{Name: "b", Kind: FieldKindDate}).Fillable())
	assert.False(t, (&SchemaField{Name: "c", Kind: FieldKindUnknown}).Fillable())
	assert.False(t, (&SchemaField{Name: "d", Kind: FieldKindText, ReadOnly: true}).Fillable())
}
