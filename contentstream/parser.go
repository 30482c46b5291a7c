package contentstream

import (
	"bytes"
	"fmt"
	"strconv"
)

// Operation represents a single content stream operation consisting of an
// operator and its operands. Operands are PDF objects that precede the
// operator. For inline images (BI) the image parameters are carried as a
// single Dict operand and the binary payload in InlineData.
type Operation struct {
	Operator   string   // The operator (e.g., "cm", "Do", "q")
	Operands   []Object // The operands
	InlineData []byte   // Raw payload between ID and EI, set only for BI
}

// Parser parses PDF content streams into a sequence of operations.
type Parser struct {
	data     []byte
	pos      int
	ops      []Operation
	operands []Object
}

// NewParser creates a new content stream parser for the given data.
func NewParser(data []byte) *Parser {
	return &Parser{
		data: data,
		ops:  make([]Operation, 0),
	}
}

// Parse parses the content stream and returns all operations in order.
func (p *Parser) Parse() ([]Operation, error) {
	for p.pos < len(p.data) {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			break
		}
		if err := p.parseNext(); err != nil {
			return nil, err
		}
	}
	return p.ops, nil
}

// parseNext parses the next token, which is either an operand (pushed onto
// the operand stack) or an operator (which consumes the stack and records
// an Operation).
func (p *Parser) parseNext() error {
	start := p.pos

	c := p.data[p.pos]
	if isLetter(c) || c == '\'' || c == '"' {
		return p.parseOperator()
	}

	operand, err := p.parseOperand()
	if err != nil {
		return fmt.Errorf("at position %d: %w", start, err)
	}
	p.operands = append(p.operands, operand)
	return nil
}

// parseOperator parses an operator and records it with the pending
// operands. The BI operator switches to inline image parsing.
func (p *Parser) parseOperator() error {
	start := p.pos

	var op bytes.Buffer
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isLetter(c) || c == '\'' || c == '"' || c == '*' {
			op.WriteByte(c)
			p.pos++
		} else {
			break
		}
	}

	operator := op.String()
	if operator == "" {
		return fmt.Errorf("empty operator at position %d", start)
	}

	if operator == "BI" {
		return p.parseInlineImage()
	}

	operation := Operation{
		Operator: operator,
		Operands: make([]Object, len(p.operands)),
	}
	copy(operation.Operands, p.operands)
	p.ops = append(p.ops, operation)
	p.operands = nil
	return nil
}

// parseInlineImage parses the dictionary entries between BI and ID, then
// captures the raw payload up to the EI delimiter. The recorded operation
// has operator "BI" with a single Dict operand.
func (p *Parser) parseInlineImage() error {
	params := Dict{}

	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return fmt.Errorf("unterminated inline image")
		}

		// Keys are names; a bare ID token ends the parameter list.
		if p.data[p.pos] != '/' {
			tok := p.peekToken()
			if tok != "ID" {
				return fmt.Errorf("unexpected token %q in inline image dictionary", tok)
			}
			p.pos += 2
			break
		}

		keyObj, err := p.parseName()
		if err != nil {
			return err
		}
		val, err := p.parseOperand()
		if err != nil {
			return err
		}
		params[string(keyObj.(Name))] = val
	}

	// A single whitespace byte follows ID before the binary payload.
	if p.pos < len(p.data) && isWhitespace(p.data[p.pos]) {
		p.pos++
	}

	payload, err := p.readUntilEI()
	if err != nil {
		return err
	}

	p.ops = append(p.ops, Operation{
		Operator:   "BI",
		Operands:   []Object{params},
		InlineData: payload,
	})
	p.operands = nil
	return nil
}

// readUntilEI scans for the EI delimiter: "EI" preceded by whitespace and
// followed by whitespace or end of stream. Binary payloads can contain the
// byte pair by coincidence, so both boundaries are checked.
func (p *Parser) readUntilEI() ([]byte, error) {
	start := p.pos
	for i := p.pos; i+1 < len(p.data); i++ {
		if p.data[i] != 'E' || p.data[i+1] != 'I' {
			continue
		}
		if i > start && !isWhitespace(p.data[i-1]) {
			continue
		}
		if i+2 < len(p.data) && !isWhitespace(p.data[i+2]) {
			continue
		}
		end := i
		// Trim the single whitespace byte before EI.
		if end > start {
			end--
		}
		p.pos = i + 2
		return p.data[start:end], nil
	}
	return nil, fmt.Errorf("inline image missing EI delimiter")
}

// peekToken returns the next whitespace-delimited token without advancing.
func (p *Parser) peekToken() string {
	end := p.pos
	for end < len(p.data) && !isWhitespace(p.data[end]) && !isDelimiter(p.data[end]) {
		end++
	}
	return string(p.data[p.pos:end])
}

// parseOperand parses a single operand: number, string, name, array,
// dictionary, boolean, or null.
func (p *Parser) parseOperand() (Object, error) {
	p.skipWhitespace()
	if p.pos >= len(p.data) {
		return nil, fmt.Errorf("unexpected end of stream")
	}

	c := p.data[p.pos]

	if c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9') {
		return p.parseNumber()
	}
	if c == '(' {
		return p.parseString()
	}
	if c == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] != '<' {
		return p.parseHexString()
	}
	if c == '/' {
		return p.parseName()
	}
	if c == '[' {
		return p.parseArray()
	}
	if c == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<' {
		return p.parseDict()
	}

	if c == 't' || c == 'f' || c == 'n' {
		switch tok := p.peekToken(); tok {
		case "true":
			p.pos += len(tok)
			return Bool(true), nil
		case "false":
			p.pos += len(tok)
			return Bool(false), nil
		case "null":
			p.pos += len(tok)
			return Null{}, nil
		}
	}

	return nil, fmt.Errorf("unexpected character at position %d: %c", p.pos, c)
}

// parseNumber parses an integer or real number operand.
func (p *Parser) parseNumber() (Object, error) {
	start := p.pos
	hasDecimal := false

	if p.data[p.pos] == '+' || p.data[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
		} else if c == '.' && !hasDecimal {
			hasDecimal = true
			p.pos++
		} else {
			break
		}
	}

	numStr := string(p.data[start:p.pos])
	if hasDecimal {
		val, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real number %q: %w", numStr, err)
		}
		return Real(val), nil
	}

	val, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", numStr, err)
	}
	return Int(val), nil
}

// parseString parses a literal string (...) with escape sequence handling.
func (p *Parser) parseString() (Object, error) {
	p.pos++ // skip '('

	var result bytes.Buffer
	depth := 1

	for p.pos < len(p.data) && depth > 0 {
		c := p.data[p.pos]

		if c == '\\' && p.pos+1 < len(p.data) {
			p.pos++
			next := p.data[p.pos]
			switch next {
			case 'n':
				result.WriteByte('\n')
				p.pos++
			case 'r':
				result.WriteByte('\r')
				p.pos++
			case 't':
				result.WriteByte('\t')
				p.pos++
			case 'b':
				result.WriteByte('\b')
				p.pos++
			case 'f':
				result.WriteByte('\f')
				p.pos++
			case '(', ')', '\\':
				result.WriteByte(next)
				p.pos++
			case '\r':
				// Line continuation
				p.pos++
				if p.pos < len(p.data) && p.data[p.pos] == '\n' {
					p.pos++
				}
			case '\n':
				p.pos++
			case '0', '1', '2', '3', '4', '5', '6', '7':
				octalVal := int(next - '0')
				p.pos++
				for i := 0; i < 2 && p.pos < len(p.data); i++ {
					digit := p.data[p.pos]
					if digit < '0' || digit > '7' {
						break
					}
					octalVal = octalVal*8 + int(digit-'0')
					p.pos++
				}
				result.WriteByte(byte(octalVal & 0xFF))
			default:
				// Per the PDF spec an unknown escape drops the backslash.
				result.WriteByte(next)
				p.pos++
			}
		} else if c == '(' {
			depth++
			result.WriteByte(c)
			p.pos++
		} else if c == ')' {
			depth--
			if depth > 0 {
				result.WriteByte(c)
			}
			p.pos++
		} else {
			result.WriteByte(c)
			p.pos++
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("unclosed string")
	}
	return String(result.String()), nil
}

// parseHexString parses a hexadecimal string <...>.
func (p *Parser) parseHexString() (Object, error) {
	p.pos++ // skip '<'

	var result bytes.Buffer
	var pending byte
	havePending := false

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c == '>' {
			p.pos++
			if havePending {
				// Odd digit count implies a trailing zero.
				result.WriteByte(pending << 4)
			}
			return String(result.String()), nil
		}
		if isWhitespace(c) {
			p.pos++
			continue
		}
		if !isHexDigit(c) {
			return nil, fmt.Errorf("invalid hex digit: %c", c)
		}
		if havePending {
			result.WriteByte((pending << 4) | hexValue(c))
			havePending = false
		} else {
			pending = hexValue(c)
			havePending = true
		}
		p.pos++
	}

	return nil, fmt.Errorf("unclosed hex string")
}

// parseName parses a name object /Name with # escape handling.
func (p *Parser) parseName() (Object, error) {
	p.pos++ // skip '/'

	var result bytes.Buffer
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		if c == '#' && p.pos+2 < len(p.data) && isHexDigit(p.data[p.pos+1]) && isHexDigit(p.data[p.pos+2]) {
			result.WriteByte((hexValue(p.data[p.pos+1]) << 4) | hexValue(p.data[p.pos+2]))
			p.pos += 3
			continue
		}
		result.WriteByte(c)
		p.pos++
	}

	return Name(result.String()), nil
}

// parseArray parses an array [...].
func (p *Parser) parseArray() (Object, error) {
	p.pos++ // skip '['

	var result Array
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed array")
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return result, nil
		}
		elem, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		result = append(result, elem)
	}
}

// parseDict parses a dictionary <<...>>.
func (p *Parser) parseDict() (Object, error) {
	p.pos += 2 // skip '<<'

	result := Dict{}
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed dictionary")
		}
		if p.data[p.pos] == '>' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '>' {
			p.pos += 2
			return result, nil
		}
		if p.data[p.pos] != '/' {
			return nil, fmt.Errorf("dictionary key must be a name at position %d", p.pos)
		}
		key, err := p.parseName()
		if err != nil {
			return nil, err
		}
		val, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		result[string(key.(Name))] = val
	}
}

func (p *Parser) skipWhitespace() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) {
			p.pos++
		} else if c == '%' {
			// Comment runs to end of line.
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
		} else {
			break
		}
	}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
