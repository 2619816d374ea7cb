package acroform

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// FillOptions controls how values are written into the form
type FillOptions struct {
	// Flatten marks every filled field read-only so the produced document can
	// no longer be edited in a viewer
	Flatten bool
}

// FillFields writes the given values into the document's named form fields
// and returns the complete resulting PDF. The original bytes are left intact
// and the changes are appended as an incremental update, so failures can
// never produce a partially modified document: either every value has a
// matching field and the new revision is returned, or an error is.
func FillFields(pdf []byte, values map[string]string, opts FillOptions) ([]byte, error) {
	doc, err := Parse(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	nodes := doc.fieldNodes()
	byName := make(map[string]*fieldNode, len(nodes))
	for _, n := range nodes {
		byName[n.fullName] = n
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	updated := make(map[int]*object)
	for _, name := range names {
		node, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("field %q does not exist in the template", name)
		}
		if node.fieldType != fieldTypeText {
			return nil, fmt.Errorf("field %q is not a fillable text field", name)
		}
		if node.ref.Num == 0 {
			return nil, fmt.Errorf("field %q is not an indirect object", name)
		}

		dict := copyDict(node.dict)
		dict["V"] = encodeTextString(values[name])
		// Drop the stale appearance stream; NeedAppearances below makes the
		// viewer regenerate it from the new value
		delete(dict, "AP")
		if opts.Flatten {
			dict["Ff"] = node.flags | flagReadOnly
		}
		updated[node.ref.Num] = &object{num: node.ref.Num, gen: node.ref.Gen, val: dict}
	}

	if err := doc.setNeedAppearances(updated); err != nil {
		return nil, err
	}

	return doc.appendUpdate(updated), nil
}

// setNeedAppearances stages an updated AcroForm dictionary with
// /NeedAppearances true
func (doc *Document) setNeedAppearances(updated map[int]*object) error {
	catalog, ok := doc.catalog()
	if !ok {
		return fmt.Errorf("document has no catalog")
	}

	switch acro := catalog["AcroForm"].(type) {
	case Ref:
		dict, ok := doc.resolveDict(acro)
		if !ok {
			return fmt.Errorf("document has no form dictionary")
		}
		next := copyDict(dict)
		next["NeedAppearances"] = true
		if prior, staged := updated[acro.Num]; staged {
			// The form dictionary object was already staged as a field update
			merged := prior.val.(Dict)
			merged["NeedAppearances"] = true
		} else {
			updated[acro.Num] = &object{num: acro.Num, gen: acro.Gen, val: next}
		}
	case Dict:
		// Form dictionary lives inline in the catalog: rewrite the catalog
		next := copyDict(catalog)
		form := copyDict(acro)
		form["NeedAppearances"] = true
		next["AcroForm"] = form
		updated[doc.rootRef.Num] = &object{num: doc.rootRef.Num, gen: doc.rootRef.Gen, val: next}
	default:
		return fmt.Errorf("document has no form dictionary")
	}
	return nil
}

// appendUpdate serializes the staged objects as an incremental update after
// the original bytes, with a classic cross-reference table and trailer
func (doc *Document) appendUpdate(updated map[int]*object) []byte {
	var buf bytes.Buffer
	buf.Write(doc.data)
	if doc.data[len(doc.data)-1] != '\n' {
		buf.WriteByte('\n')
	}

	nums := make([]int, 0, len(updated))
	for num := range updated {
		nums = append(nums, num)
	}
	sort.Ints(nums)

	offsets := make(map[int]int, len(nums))
	for _, num := range nums {
		obj := updated[num]
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d %d obj\n", obj.num, obj.gen)
		writeValue(&buf, obj.val)
		buf.WriteString("\nendobj\n")
	}

	xrefOffset := buf.Len()
	buf.WriteString("xref\n")
	for i := 0; i < len(nums); {
		j := i
		for j+1 < len(nums) && nums[j+1] == nums[j]+1 {
			j++
		}
		fmt.Fprintf(&buf, "%d %d\n", nums[i], j-i+1)
		for k := i; k <= j; k++ {
			fmt.Fprintf(&buf, "%010d %05d n \n", offsets[nums[k]], updated[nums[k]].gen)
		}
		i = j + 1
	}

	size := doc.size
	if max := int64(doc.maxObjectNumber() + 1); max > size {
		size = max
	}
	trailer := Dict{
		"Size": size,
		"Root": doc.rootRef,
	}
	if doc.infoRef != nil {
		trailer["Info"] = *doc.infoRef
	}
	if doc.startXref > 0 {
		trailer["Prev"] = doc.startXref
	}

	buf.WriteString("trailer\n")
	writeValue(&buf, trailer)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	return buf.Bytes()
}

func copyDict(d Dict) Dict {
	out := make(Dict, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// writeValue serializes a parsed PDF value. Dictionary keys are written in
// sorted order so the same input always produces the same bytes.
func writeValue(buf *bytes.Buffer, v interface{}) {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case int64:
		buf.WriteString(strconv.FormatInt(t, 10))
	case float64:
		buf.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case Name:
		writeName(buf, t)
	case Ref:
		fmt.Fprintf(buf, "%d %d R", t.Num, t.Gen)
	case String:
		writeString(buf, t)
	case Array:
		buf.WriteByte('[')
		for i, entry := range t {
			if i > 0 {
				buf.WriteByte(' ')
			}
			writeValue(buf, entry)
		}
		buf.WriteByte(']')
	case Dict:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		buf.WriteString("<<")
		for _, k := range keys {
			buf.WriteByte(' ')
			writeName(buf, Name(k))
			buf.WriteByte(' ')
			writeValue(buf, t[Name(k)])
		}
		buf.WriteString(" >>")
	default:
		// Unknown parsed value; write null rather than corrupt the update
		buf.WriteString("null")
	}
}

func writeName(buf *bytes.Buffer, n Name) {
	buf.WriteByte('/')
	for i := 0; i < len(n); i++ {
		b := n[i]
		if b <= 0x20 || b >= 0x7F || isDelimiter(b) || b == '#' {
			fmt.Fprintf(buf, "#%02X", b)
			continue
		}
		buf.WriteByte(b)
	}
}

func writeString(buf *bytes.Buffer, s String) {
	printable := true
	for _, b := range s {
		if b < 0x20 || b >= 0x7F {
			printable = false
			break
		}
	}
	if printable {
		buf.WriteByte('(')
		for _, b := range s {
			if b == '(' || b == ')' || b == '\\' {
				buf.WriteByte('\\')
			}
			buf.WriteByte(b)
		}
		buf.WriteByte(')')
		return
	}
	buf.WriteByte('<')
	for _, b := range s {
		fmt.Fprintf(buf, "%02X", b)
	}
	buf.WriteByte('>')
}
