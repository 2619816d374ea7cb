package acroform

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

// Document is a parsed PDF, indexed by object number. Parsing scans the
// whole file for indirect objects instead of trusting the cross-reference
// table; files produced through several incremental updates then resolve to
// the newest definition of each object, because later definitions overwrite
// earlier ones in scan order.
type Document struct {
	data      []byte
	objects   map[int]*object
	rootRef   Ref
	infoRef   *Ref
	size      int64
	startXref int64
}

var objHeaderPattern = regexp.MustCompile(`(\d+)[\x00\t\n\f\r ]+(\d+)[\x00\t\n\f\r ]+obj`)

// Parse reads a PDF from raw bytes. It fails only when the data carries no
// recognizable PDF structure at all; a well-formed PDF without a form
// dictionary parses fine and simply yields no fields.
func Parse(data []byte) (*Document, error) {
	if len(data) < 8 || !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("data is not a PDF document")
	}

	doc := &Document{
		data:    data,
		objects: make(map[int]*object),
	}

	doc.scanObjects()
	doc.expandObjectStreams()
	doc.scanTrailers()
	doc.scanStartXref()

	if doc.rootRef.Num == 0 {
		return nil, fmt.Errorf("document has no catalog reference")
	}
	if len(doc.objects) == 0 {
		return nil, fmt.Errorf("document has no indirect objects")
	}
	return doc, nil
}

// scanObjects walks the file once, parsing every "N G obj ... endobj" block.
// The cursor skips past stream payloads so binary data cannot fake an object
// header.
func (doc *Document) scanObjects() {
	matches := objHeaderPattern.FindAllSubmatchIndex(doc.data, -1)
	cursor := 0
	for _, m := range matches {
		start := m[0]
		if start < cursor {
			continue
		}
		// The object number must start on a token boundary
		if start > 0 && !isWhitespace(doc.data[start-1]) && !isDelimiter(doc.data[start-1]) {
			continue
		}
		num, err := strconv.Atoi(string(doc.data[m[2]:m[3]]))
		if err != nil {
			continue
		}
		gen, err := strconv.Atoi(string(doc.data[m[4]:m[5]]))
		if err != nil {
			continue
		}

		p := newParser(doc.data, m[1])
		val, err := p.parseValue()
		if err != nil {
			cursor = m[1]
			continue
		}

		obj := &object{num: num, gen: gen, val: val}
		if p.nextKeywordIs("stream") {
			content, end, ok := doc.readStream(p.pos)
			if !ok {
				cursor = p.pos
				continue
			}
			obj.stream = content
			p.pos = end
		}
		p.nextKeywordIs("endobj")

		doc.objects[num] = obj
		doc.recordTrailerEntries(obj.val)
		cursor = p.pos
	}
}

// readStream extracts raw stream content starting right after the "stream"
// keyword. Content runs to the matching "endstream"; the declared /Length is
// ignored because it may be an indirect reference we have not resolved yet.
func (doc *Document) readStream(pos int) (content []byte, end int, ok bool) {
	if pos < len(doc.data) && doc.data[pos] == '\r' {
		pos++
	}
	if pos < len(doc.data) && doc.data[pos] == '\n' {
		pos++
	}
	idx := bytes.Index(doc.data[pos:], []byte("endstream"))
	if idx < 0 {
		return nil, 0, false
	}
	content = doc.data[pos : pos+idx]
	// Strip the EOL that precedes the endstream keyword
	content = bytes.TrimRight(content, "\r\n")
	return content, pos + idx + len("endstream"), true
}

// expandObjectStreams parses objects embedded in /ObjStm streams. Embedded
// objects never override a definition found in the file body, which keeps
// the newest-definition-wins rule of the plain scan intact.
func (doc *Document) expandObjectStreams() {
	var streams []*object
	for _, obj := range doc.objects {
		dict, ok := obj.val.(Dict)
		if !ok || obj.stream == nil {
			continue
		}
		if t, _ := dict["Type"].(Name); t == "ObjStm" {
			streams = append(streams, obj)
		}
	}

	for _, obj := range streams {
		dict := obj.val.(Dict)
		decoded, err := decodeStream(dict, obj.stream)
		if err != nil {
			continue
		}
		count, ok := intValue(doc.Resolve(dict["N"]))
		if !ok {
			continue
		}
		first, ok := intValue(doc.Resolve(dict["First"]))
		if !ok || first > int64(len(decoded)) {
			continue
		}

		// Header region: N pairs of "objnum offset"
		hp := newParser(decoded[:first], 0)
		type entry struct {
			num    int
			offset int64
		}
		entries := make([]entry, 0, count)
		valid := true
		for i := int64(0); i < count; i++ {
			numVal, isInt, err := hp.parseNumber()
			if err != nil || !isInt {
				valid = false
				break
			}
			offVal, isInt, err := hp.parseNumber()
			if err != nil || !isInt {
				valid = false
				break
			}
			entries = append(entries, entry{num: int(numVal.(int64)), offset: offVal.(int64)})
		}
		if !valid {
			continue
		}

		for _, e := range entries {
			if _, exists := doc.objects[e.num]; exists {
				continue
			}
			pos := first + e.offset
			if pos < 0 || pos >= int64(len(decoded)) {
				continue
			}
			ep := newParser(decoded, int(pos))
			val, err := ep.parseValue()
			if err != nil {
				continue
			}
			doc.objects[e.num] = &object{num: e.num, val: val}
			doc.recordTrailerEntries(val)
		}
	}
}

// scanTrailers parses every classic "trailer << ... >>" dictionary. Later
// trailers win, matching incremental-update semantics.
func (doc *Document) scanTrailers() {
	search := doc.data
	base := 0
	for {
		idx := bytes.Index(search, []byte("trailer"))
		if idx < 0 {
			break
		}
		p := newParser(doc.data, base+idx+len("trailer"))
		if val, err := p.parseValue(); err == nil {
			doc.recordTrailerEntries(val)
		}
		base += idx + len("trailer")
		search = doc.data[base:]
	}
}

// recordTrailerEntries picks up /Root, /Info and /Size from trailer
// dictionaries and cross-reference stream dictionaries
func (doc *Document) recordTrailerEntries(val interface{}) {
	dict, ok := val.(Dict)
	if !ok {
		return
	}
	t, _ := dict["Type"].(Name)
	_, isTrailer := dict["Root"]
	if t != "XRef" && !isTrailer {
		return
	}
	if ref, ok := dict["Root"].(Ref); ok {
		doc.rootRef = ref
	}
	if ref, ok := dict["Info"].(Ref); ok {
		r := ref
		doc.infoRef = &r
	}
	if size, ok := intValue(dict["Size"]); ok && size > doc.size {
		doc.size = size
	}
}

// scanStartXref records the offset announced by the last startxref keyword,
// used as /Prev when appending an incremental update
func (doc *Document) scanStartXref() {
	idx := bytes.LastIndex(doc.data, []byte("startxref"))
	if idx < 0 {
		return
	}
	p := newParser(doc.data, idx+len("startxref"))
	val, isInt, err := p.parseNumber()
	if err != nil || !isInt {
		return
	}
	doc.startXref = val.(int64)
}

// Resolve follows indirect references until a direct value is reached
func (doc *Document) Resolve(v interface{}) interface{} {
	for i := 0; i < 32; i++ {
		ref, ok := v.(Ref)
		if !ok {
			return v
		}
		obj, ok := doc.objects[ref.Num]
		if !ok {
			return nil
		}
		v = obj.val
	}
	return nil
}

// resolveDict resolves a value expected to be a dictionary
func (doc *Document) resolveDict(v interface{}) (Dict, bool) {
	dict, ok := doc.Resolve(v).(Dict)
	return dict, ok
}

// resolveArray resolves a value expected to be an array
func (doc *Document) resolveArray(v interface{}) (Array, bool) {
	arr, ok := doc.Resolve(v).(Array)
	return arr, ok
}

// catalog returns the document catalog dictionary
func (doc *Document) catalog() (Dict, bool) {
	return doc.resolveDict(doc.rootRef)
}

// maxObjectNumber returns the highest object number in use
func (doc *Document) maxObjectNumber() int {
	max := 0
	for num := range doc.objects {
		if num > max {
			max = num
		}
	}
	return max
}

// decodeStream applies the stream's filter chain. Only FlateDecode is
// supported; unfiltered streams pass through. Anything else is an error so
// callers can skip the stream.
func decodeStream(dict Dict, raw []byte) ([]byte, error) {
	filter := dict["Filter"]
	switch f := filter.(type) {
	case nil:
		return raw, nil
	case Name:
		if f != "FlateDecode" {
			return nil, fmt.Errorf("unsupported stream filter %q", f)
		}
		return inflate(raw)
	case Array:
		data := raw
		for _, entry := range f {
			name, ok := entry.(Name)
			if !ok || name != "FlateDecode" {
				return nil, fmt.Errorf("unsupported stream filter chain")
			}
			var err error
			data, err = inflate(data)
			if err != nil {
				return nil, err
			}
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported stream filter entry")
	}
}

func inflate(raw []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to open flate stream: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to inflate stream: %w", err)
	}
	return out, nil
}
