package enhance

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const EnhancementFormula = "Formula rendering"
const EnhancementInvalidFormula = "Invalid formula detected"

var ErrInvalidFormula = errors.New("invalid formula")

// A formula is $...$ with no whitespace just inside either dollar sign, so prices like "$5 and $6" are
// left alone.
var formulaRegex = regexp.MustCompile(`\$([^$\s](?:[^$]*[^$\s])?)\$`)

func renderFormulas(text string, applied []string) (string, []string) {
	if !strings.Contains(text, "$") {
		return text, applied
	}
	text = formulaRegex.ReplaceAllStringFunc(text, func(s string) string {
		rendered, err := RenderFormula(s[1 : len(s)-1])
		if err != nil {
			applied = append(applied, EnhancementInvalidFormula)
			return fmt.Sprintf("<span class=\"formula-error\">%s</span>", s)
		}
		applied = append(applied, EnhancementFormula)
		return "$" + rendered + "$"
	})
	return text, applied
}

// RenderFormula - Parses a formula (without its dollar signs) and renders it as normalised LaTeX. Binary
// operators get single spaces around them, and everything else is written without whitespace.
//
// Grammar:
//
//	expr   = term { ("+" | "-" | "*" | "/" | "=") term }
//	term   = factor { ("^" | "_") group }
//	factor = number | ident | "-" factor | "(" expr ")" | group
//	       | "\frac" group group | "\sqrt" [ "[" expr "]" ] group
//	group  = "{" expr "}"
func RenderFormula(formula string) (string, error) {
	p := &formulaParser{src: formula}
	out, err := p.expr()
	if err != nil {
		return "", err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return "", p.errorf("unexpected '%c'", p.src[p.pos])
	}
	return out, nil
}

type formulaParser struct {
	src string
	pos int
}

func (p *formulaParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrInvalidFormula, p.pos, fmt.Sprintf(format, args...))
}

func (p *formulaParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *formulaParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *formulaParser) expect(c byte) error {
	if p.peek() != c {
		if p.pos >= len(p.src) {
			return p.errorf("expected '%c' before end of formula", c)
		}
		return p.errorf("expected '%c'", c)
	}
	p.pos++
	return nil
}

func (p *formulaParser) expr() (string, error) {
	out, err := p.term()
	if err != nil {
		return "", err
	}
	for {
		op := p.peek()
		if op == 0 || !strings.ContainsRune("+-*/=", rune(op)) {
			return out, nil
		}
		p.pos++
		rhs, err := p.term()
		if err != nil {
			return "", err
		}
		out = fmt.Sprintf("%s %c %s", out, op, rhs)
	}
}

func (p *formulaParser) term() (string, error) {
	out, err := p.factor()
	if err != nil {
		return "", err
	}
	for {
		op := p.peek()
		if op != '^' && op != '_' {
			return out, nil
		}
		p.pos++
		g, err := p.group()
		if err != nil {
			return "", err
		}
		out = fmt.Sprintf("%s%c{%s}", out, op, g)
	}
}

func (p *formulaParser) factor() (string, error) {
	c := p.peek()
	switch {
	case c == 0:
		return "", p.errorf("unexpected end of formula")
	case isDigit(c):
		return p.number(), nil
	case isLetter(c):
		return p.ident(), nil
	case c == '-':
		p.pos++
		f, err := p.factor()
		if err != nil {
			return "", err
		}
		return "-" + f, nil
	case c == '(':
		p.pos++
		inner, err := p.expr()
		if err != nil {
			return "", err
		}
		if err = p.expect(')'); err != nil {
			return "", err
		}
		return "(" + inner + ")", nil
	case c == '{':
		return p.group()
	case c == '\\':
		return p.command()
	}
	return "", p.errorf("unexpected '%c'", c)
}

func (p *formulaParser) group() (string, error) {
	if err := p.expect('{'); err != nil {
		return "", err
	}
	inner, err := p.expr()
	if err != nil {
		return "", err
	}
	if err = p.expect('}'); err != nil {
		return "", err
	}
	return inner, nil
}

func (p *formulaParser) command() (string, error) {
	p.pos++ // backslash
	start := p.pos
	for p.pos < len(p.src) && isLetter(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]

	switch name {
	case "frac":
		num, err := p.group()
		if err != nil {
			return "", err
		}
		den, err := p.group()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("\\frac{%s}{%s}", num, den), nil
	case "sqrt":
		index := ""
		if p.peek() == '[' {
			p.pos++
			var err error
			if index, err = p.expr(); err != nil {
				return "", err
			}
			if err = p.expect(']'); err != nil {
				return "", err
			}
		}
		value, err := p.group()
		if err != nil {
			return "", err
		}
		if index != "" {
			return fmt.Sprintf("\\sqrt[%s]{%s}", index, value), nil
		}
		return fmt.Sprintf("\\sqrt{%s}", value), nil
	}
	return "", p.errorf("unknown command '\\%s'", name)
}

func (p *formulaParser) number() string {
	start := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.pos+1 < len(p.src) && p.src[p.pos] == '.' && isDigit(p.src[p.pos+1]) {
		p.pos++
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}
	return p.src[start:p.pos]
}

func (p *formulaParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && (isLetter(p.src[p.pos]) || isDigit(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
