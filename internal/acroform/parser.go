package acroform

import (
	"fmt"
	"strconv"
)

// parser is a cursor over raw PDF bytes that reads one object at a time.
// It is intentionally forgiving: real-world templates come from many
// producers and the extractor must classify what it can rather than reject
// the file.
type parser struct {
	data []byte
	pos  int
}

func newParser(data []byte, pos int) *parser {
	return &parser{data: data, pos: pos}
}

func isWhitespace(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// skipWhitespace advances past whitespace and comments
func (p *parser) skipWhitespace() {
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if isWhitespace(b) {
			p.pos++
			continue
		}
		if b == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		break
	}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.data) {
		return 0, false
	}
	return p.data[p.pos], true
}

// parseValue reads the next PDF object at the cursor
func (p *parser) parseValue() (interface{}, error) {
	p.skipWhitespace()
	b, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("unexpected end of data at offset %d", p.pos)
	}

	switch {
	case b == '<':
		if p.pos+1 < len(p.data) && p.data[p.pos+1] == '<' {
			return p.parseDict()
		}
		return p.parseHexString()
	case b == '[':
		return p.parseArray()
	case b == '/':
		return p.parseName()
	case b == '(':
		return p.parseLiteralString()
	case b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9'):
		return p.parseNumberOrRef()
	default:
		return p.parseKeyword()
	}
}

// parseDict reads a dictionary starting at "<<"
func (p *parser) parseDict() (Dict, error) {
	p.pos += 2 // consume <<
	dict := Dict{}
	for {
		p.skipWhitespace()
		b, ok := p.peek()
		if !ok {
			return nil, fmt.Errorf("unterminated dictionary at offset %d", p.pos)
		}
		if b == '>' {
			if p.pos+1 < len(p.data) && p.data[p.pos+1] == '>' {
				p.pos += 2
				return dict, nil
			}
			return nil, fmt.Errorf("malformed dictionary close at offset %d", p.pos)
		}
		if b != '/' {
			return nil, fmt.Errorf("expected name key at offset %d", p.pos)
		}
		key, err := p.parseName()
		if err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		dict[key] = value
	}
}

// parseArray reads an array starting at "["
func (p *parser) parseArray() (Array, error) {
	p.pos++ // consume [
	arr := Array{}
	for {
		p.skipWhitespace()
		b, ok := p.peek()
		if !ok {
			return nil, fmt.Errorf("unterminated array at offset %d", p.pos)
		}
		if b == ']' {
			p.pos++
			return arr, nil
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
}

// parseName reads a name starting at "/", decoding #xx escapes
func (p *parser) parseName() (Name, error) {
	p.pos++ // consume /
	var out []byte
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		if b == '#' && p.pos+2 < len(p.data) {
			if v, err := strconv.ParseUint(string(p.data[p.pos+1:p.pos+3]), 16, 8); err == nil {
				out = append(out, byte(v))
				p.pos += 3
				continue
			}
		}
		out = append(out, b)
		p.pos++
	}
	return Name(out), nil
}

// parseLiteralString reads a "(...)" string, handling nesting and escapes
func (p *parser) parseLiteralString() (String, error) {
	p.pos++ // consume (
	var out []byte
	depth := 1
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		switch b {
		case '\\':
			p.pos++
			if p.pos >= len(p.data) {
				return nil, fmt.Errorf("unterminated string escape at offset %d", p.pos)
			}
			e := p.data[p.pos]
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, e)
			case '\r':
				// line continuation, swallow an optional LF
				if p.pos+1 < len(p.data) && p.data[p.pos+1] == '\n' {
					p.pos++
				}
			case '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					// up to three octal digits
					v := int(e - '0')
					for n := 0; n < 2 && p.pos+1 < len(p.data); n++ {
						next := p.data[p.pos+1]
						if next < '0' || next > '7' {
							break
						}
						v = v*8 + int(next-'0')
						p.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
			p.pos++
		case '(':
			depth++
			out = append(out, b)
			p.pos++
		case ')':
			depth--
			if depth == 0 {
				p.pos++
				return String(out), nil
			}
			out = append(out, b)
			p.pos++
		default:
			out = append(out, b)
			p.pos++
		}
	}
	return nil, fmt.Errorf("unterminated literal string")
}

// parseHexString reads a "<...>" string
func (p *parser) parseHexString() (String, error) {
	p.pos++ // consume <
	var digits []byte
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if b == '>' {
			p.pos++
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			out := make([]byte, len(digits)/2)
			for i := 0; i < len(out); i++ {
				v, err := strconv.ParseUint(string(digits[2*i:2*i+2]), 16, 8)
				if err != nil {
					return nil, fmt.Errorf("invalid hex string digit at offset %d", p.pos)
				}
				out[i] = byte(v)
			}
			return String(out), nil
		}
		if !isWhitespace(b) {
			digits = append(digits, b)
		}
		p.pos++
	}
	return nil, fmt.Errorf("unterminated hex string")
}

// parseNumberOrRef reads a number, upgrading "num gen R" to a reference
func (p *parser) parseNumberOrRef() (interface{}, error) {
	first, isInt, err := p.parseNumber()
	if err != nil {
		return nil, err
	}
	if !isInt {
		return first, nil
	}

	// Lookahead for "gen R"
	save := p.pos
	p.skipWhitespace()
	b, ok := p.peek()
	if ok && b >= '0' && b <= '9' {
		second, secondInt, err := p.parseNumber()
		if err == nil && secondInt {
			p.skipWhitespace()
			if r, ok := p.peek(); ok && r == 'R' {
				next := p.pos + 1
				if next >= len(p.data) || isWhitespace(p.data[next]) || isDelimiter(p.data[next]) {
					p.pos = next
					return Ref{Num: int(first.(int64)), Gen: int(second.(int64))}, nil
				}
			}
		}
	}
	p.pos = save
	return first, nil
}

// parseNumber reads an integer or real
func (p *parser) parseNumber() (interface{}, bool, error) {
	start := p.pos
	if b, ok := p.peek(); ok && (b == '+' || b == '-') {
		p.pos++
	}
	isReal := false
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if b >= '0' && b <= '9' {
			p.pos++
			continue
		}
		if b == '.' {
			isReal = true
			p.pos++
			continue
		}
		break
	}
	text := string(p.data[start:p.pos])
	if text == "" || text == "+" || text == "-" {
		return nil, false, fmt.Errorf("invalid number at offset %d", start)
	}
	if isReal {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, false, fmt.Errorf("invalid real number %q", text)
		}
		return v, false, nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("invalid integer %q", text)
	}
	return v, true, nil
}

// parseKeyword reads a bare keyword (true, false, null)
func (p *parser) parseKeyword() (interface{}, error) {
	start := p.pos
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		p.pos++
	}
	word := string(p.data[start:p.pos])
	switch word {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected keyword %q at offset %d", word, start)
	}
}

// nextKeywordIs reports whether the next token is the given bare keyword and
// consumes it when it is
func (p *parser) nextKeywordIs(word string) bool {
	save := p.pos
	p.skipWhitespace()
	end := p.pos + len(word)
	if end > len(p.data) || string(p.data[p.pos:end]) != word {
		p.pos = save
		return false
	}
	if end < len(p.data) && !isWhitespace(p.data[end]) && !isDelimiter(p.data[end]) {
		p.pos = save
		return false
	}
	p.pos = end
	return true
}
