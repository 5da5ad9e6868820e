package directive

import (
	"regexp"
	"strconv"
	"strings"
)

// whitespace is the set trimmed from the input and skipped before tokens.
const whitespace = " \t\n\r\x00\x0B"

var keyRegex = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// parser holds the state of a single Parse call.
type parser struct {
	raw string
	src string
	pos int
}

// Parse parses one comment text into a Directive.
func Parse(raw string) (Directive, error) {
	p := &parser{raw: raw, src: strings.Trim(raw, whitespace)}
	if p.src == "" {
		return Empty{}, nil
	}

	d, err := p.parse(false)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, p.errorf("Unexpected char: "+string(p.src[p.pos]), p.pos)
	}
	return d, nil
}

// MustParse is like Parse but panics on error. It is meant for tests and
// package-level directive tables.
func MustParse(raw string) Directive {
	d, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func (p *parser) errorf(message string, pos int) *SyntaxError {
	return &SyntaxError{Message: message, Raw: p.raw, Position: pos}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) skipWhitespace() {
	for !p.eof() && strings.IndexByte(whitespace, p.src[p.pos]) >= 0 {
		p.pos++
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isDelimiter(c byte) bool {
	switch c {
	case '{', '[', ',', ']', '(', ')', '}':
		return true
	}
	return false
}

// parse reads one directive starting at the current position. In argument
// mode a key may be terminated by ',' or ')' and foreach is not allowed.
func (p *parser) parse(args bool) (Directive, error) {
	p.skipWhitespace()
	if p.eof() {
		return nil, p.errorf("Unexpected end of input", -1)
	}

	c := p.src[p.pos]
	switch {
	case c == '-' && p.pos+1 < len(p.src) && isDigit(p.src[p.pos+1]):
		p.pos++
		return p.parseNumber(true)
	case isDigit(c):
		return p.parseNumber(false)
	case c == '\'' || c == '"':
		return p.parseText()
	}

	start := p.pos
	for !p.eof() && !isDelimiter(p.src[p.pos]) {
		p.pos++
	}
	key := strings.Trim(p.src[start:p.pos], whitespace)
	if key == "" || !keyRegex.MatchString(key) || key[0] == '.' || key[len(key)-1] == '.' || strings.Contains(key, "..") {
		return nil, p.errorf("Invalid key: '"+key+"'", start)
	}

	if p.eof() || (args && (p.src[p.pos] == ',' || p.src[p.pos] == ')')) {
		return Key{Path: key}, nil
	}

	switch p.src[p.pos] {
	case '[':
		if args {
			return nil, p.errorf("Unexpected char: [", p.pos)
		}
		p.pos++
		p.skipWhitespace()
		if p.eof() {
			return nil, p.errorf("Unexpected end of input", -1)
		}
		if p.src[p.pos] != ']' {
			return nil, p.errorf("Unexpected char: "+string(p.src[p.pos]), p.pos)
		}
		p.pos++
		return Foreach{Path: key}, nil
	case '(':
		p.pos++
		return p.parseCall(key)
	default:
		return nil, p.errorf("Unexpected char: "+string(p.src[p.pos]), p.pos)
	}
}

// parseCall reads the argument list of a call; the opening parenthesis has
// already been consumed. A trailing comma before ')' is accepted.
func (p *parser) parseCall(name string) (Directive, error) {
	call := Call{Name: name}

	p.skipWhitespace()
	if !p.eof() && p.src[p.pos] == ')' {
		p.pos++
		return call, nil
	}

	for {
		arg, err := p.parse(true)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		p.skipWhitespace()
		if p.eof() {
			return nil, p.errorf("Unexpected end of input", -1)
		}
		switch p.src[p.pos] {
		case ')':
			p.pos++
			return call, nil
		case ',':
			p.pos++
			p.skipWhitespace()
			if !p.eof() && p.src[p.pos] == ')' {
				p.pos++
				return call, nil
			}
		default:
			return nil, p.errorf("Unexpected char: "+string(p.src[p.pos]), p.pos)
		}
	}
}

// parseNumber greedily consumes digits and at most one dot.
func (p *parser) parseNumber(negative bool) (Directive, error) {
	start := p.pos
	dot := false
	for !p.eof() {
		c := p.src[p.pos]
		if c == '.' && !dot {
			dot = true
		} else if !isDigit(c) {
			break
		}
		p.pos++
	}

	literal := p.src[start:p.pos]
	if negative {
		literal = "-" + literal
	}

	if dot {
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return nil, p.errorf("Invalid number: "+literal, start)
		}
		return Number{Float: f, IsFloat: true}, nil
	}

	n, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		return nil, p.errorf("Number out of range: "+literal, start)
	}
	return Number{Int: n}, nil
}

// parseText reads a quoted literal. Only a backslash directly followed by
// the opening quote character is an escape.
func (p *parser) parseText() (Directive, error) {
	quote := p.src[p.pos]
	p.pos++

	var b strings.Builder
	for !p.eof() && p.src[p.pos] != quote {
		if p.src[p.pos] == '\\' && p.pos+1 < len(p.src) && p.src[p.pos+1] == quote {
			p.pos++
		}
		b.WriteByte(p.src[p.pos])
		p.pos++
	}

	if p.eof() {
		return nil, p.errorf("Unexpected end of string literal", -1)
	}
	p.pos++
	return Text{Value: b.String()}, nil
}
