package acroform

import (
	"fmt"
	"strings"
)

// Kind classifies a form field for the editing dialog
type Kind string

const (
	// KindText is a single-line text field
	KindText Kind = "text"
	// KindDate is a text field whose name or format action declares a date
	KindDate Kind = "date"
	// KindNumber is a text field with a numeric format action
	KindNumber Kind = "number"
	// KindTextarea is a multiline text field
	KindTextarea Kind = "textarea"
	// KindUnknown covers buttons, choices, signatures and fields without a
	// type; they are kept in the schema but are not fillable
	KindUnknown Kind = "unknown"
)

// Field is one entry of the extracted field schema, in document order
type Field struct {
	Name         string
	Kind         Kind
	ReadOnly     bool
	DefaultValue string
}

// fieldNode is a terminal field with the context needed for filling
type fieldNode struct {
	fullName  string
	dict      Dict
	ref       Ref
	fieldType Name
	flags     int64
	value     string
	def       string
	format    string
}

// ExtractFields parses the document's interactive-form field tree into an
// ordered schema. The order is the depth-first walk of the /AcroForm /Fields
// array, so re-extraction from the same bytes always yields the same result.
// A document without a form dictionary yields an empty schema and no error;
// bytes that are not a PDF at all yield an error.
func ExtractFields(pdf []byte) ([]Field, error) {
	doc, err := Parse(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	nodes := doc.fieldNodes()
	fields := make([]Field, 0, len(nodes))
	for _, n := range nodes {
		def := n.def
		if def == "" {
			def = n.value
		}
		fields = append(fields, Field{
			Name:         n.fullName,
			Kind:         classify(n),
			ReadOnly:     n.flags&flagReadOnly != 0,
			DefaultValue: def,
		})
	}
	return fields, nil
}

// FieldValues returns the current /V value of every terminal field
func FieldValues(pdf []byte) (map[string]string, error) {
	doc, err := Parse(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	values := make(map[string]string)
	for _, n := range doc.fieldNodes() {
		values[n.fullName] = n.value
	}
	return values, nil
}

// fieldNodes walks the field tree and returns its terminal fields in
// document order
func (doc *Document) fieldNodes() []*fieldNode {
	catalog, ok := doc.catalog()
	if !ok {
		return nil
	}
	acro, ok := doc.resolveDict(catalog["AcroForm"])
	if !ok {
		return nil
	}
	rootFields, ok := doc.resolveArray(acro["Fields"])
	if !ok {
		return nil
	}

	var nodes []*fieldNode
	for _, entry := range rootFields {
		doc.walkField(entry, "", Dict{}, &nodes)
	}
	return nodes
}

// inheritable field entries, merged top-down during the walk
var inheritableKeys = []Name{"FT", "Ff", "V", "DV", "AA"}

func (doc *Document) walkField(entry interface{}, parentName string, inherited Dict, out *[]*fieldNode) {
	ref, _ := entry.(Ref)
	dict, ok := doc.resolveDict(entry)
	if !ok {
		return
	}

	merged := Dict{}
	for _, key := range inheritableKeys {
		if v, ok := inherited[key]; ok {
			merged[key] = v
		}
	}
	for _, key := range inheritableKeys {
		if v, ok := dict[key]; ok {
			merged[key] = v
		}
	}

	partial := stringValue(doc.Resolve(dict["T"]))
	fullName := partial
	if parentName != "" && partial != "" {
		fullName = parentName + "." + partial
	} else if parentName != "" {
		fullName = parentName
	}

	kids, hasKids := doc.resolveArray(dict["Kids"])
	if hasKids && doc.kidsAreFields(kids) {
		for _, kid := range kids {
			doc.walkField(kid, fullName, merged, out)
		}
		return
	}

	// Terminal field; kids, if any, are widget annotations of this field
	if partial == "" {
		return
	}

	node := &fieldNode{
		fullName: fullName,
		dict:     dict,
		ref:      ref,
	}
	if ft, ok := doc.Resolve(merged["FT"]).(Name); ok {
		node.fieldType = ft
	}
	if ff, ok := intValue(doc.Resolve(merged["Ff"])); ok {
		node.flags = ff
	}
	node.value = stringValue(doc.Resolve(merged["V"]))
	node.def = stringValue(doc.Resolve(merged["DV"]))
	node.format = doc.formatScript(merged["AA"])

	*out = append(*out, node)
}

// kidsAreFields reports whether any kid carries its own partial name, which
// makes the parent a non-terminal node of the field tree
func (doc *Document) kidsAreFields(kids Array) bool {
	for _, kid := range kids {
		dict, ok := doc.resolveDict(kid)
		if !ok {
			continue
		}
		if _, named := dict["T"]; named {
			return true
		}
	}
	return false
}

// formatScript extracts the JavaScript of the field's format action, used to
// recognize the AFDate / AFNumber helper formats
func (doc *Document) formatScript(aa interface{}) string {
	aaDict, ok := doc.resolveDict(aa)
	if !ok {
		return ""
	}
	action, ok := doc.resolveDict(aaDict["F"])
	if !ok {
		return ""
	}
	return stringValue(doc.Resolve(action["JS"]))
}

// dateNameHints are substrings of a field name that mark it as a date field.
// "data" covers the Romanian form labels the templates use.
var dateNameHints = []string{"date", "data"}

// classify maps a terminal field to its schema kind. For text fields the
// checks run in a fixed order: date hint, numeric format, multiline flag,
// plain text. Button, choice and signature fields are not fillable.
func classify(n *fieldNode) Kind {
	if n.fieldType != fieldTypeText {
		return KindUnknown
	}

	lowerName := strings.ToLower(n.fullName)
	for _, hint := range dateNameHints {
		if strings.Contains(lowerName, hint) {
			return KindDate
		}
	}
	if strings.Contains(n.format, "AFDate") {
		return KindDate
	}
	if strings.Contains(n.format, "AFNumber") {
		return KindNumber
	}
	if n.flags&flagMultiline != 0 {
		return KindTextarea
	}
	return KindText
}
