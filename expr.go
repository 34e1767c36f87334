package sheetcalc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Evaluator turns a literal expression (all references already substituted)
// into a cell value.
type Evaluator interface {
	Evaluate(expression string) Value
}

// exprEvaluator implements Evaluator using expr-lang/expr for the arithmetic path.
type exprEvaluator struct {
	cache sync.Map // normalized expression → compiled *vm.Program
}

// NewEvaluator creates the default evaluator backed by expr-lang/expr.
//
// An expression made only of numbers (optionally with an exponent, as in
// "1e+21"), + - * / ^ and parentheses evaluates to
// a number. Anything else falls back to text: "a" + "b" style chains of quoted
// segments are concatenated, all other input is returned unchanged.
func NewEvaluator() Evaluator {
	return &exprEvaluator{}
}

func (e *exprEvaluator) Evaluate(expression string) Value {
	if n, err := e.arithmetic(expression); err == nil {
		return Number(n)
	}
	return Text(concatQuoted(expression))
}

func (e *exprEvaluator) arithmetic(expression string) (float64, error) {
	normalized, err := normalizeArithmetic(expression)
	if err != nil {
		return 0, err
	}
	program, err := e.compile(normalized)
	if err != nil {
		return 0, fmt.Errorf("compile expression %q: %w", normalized, err)
	}
	out, err := expr.Run(program, nil)
	if err != nil {
		return 0, fmt.Errorf("evaluate expression %q: %w", normalized, err)
	}
	switch v := out.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, fmt.Errorf("expression %q evaluated to %T, expected number", normalized, out)
}

func (e *exprEvaluator) compile(expression string) (*vm.Program, error) {
	if cached, ok := e.cache.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression)
	if err != nil {
		return nil, err
	}
	e.cache.Store(expression, program)
	return program, nil
}

var errNotArithmetic = errors.New("not an arithmetic expression")

// normalizeArithmetic checks that s is plain arithmetic and rewrites it for
// expr: every number becomes a float literal, and every signed operand is
// parenthesized so that unary + and - bind tighter than ^ ("-2^2" is 4).
func normalizeArithmetic(s string) (string, error) {
	p := &arithParser{src: s}
	out, err := p.expression()
	if err != nil {
		return "", err
	}
	p.skipSpace()
	if !p.eof() {
		return "", fmt.Errorf("%w: unexpected %q at %d", errNotArithmetic, p.src[p.pos], p.pos)
	}
	return out, nil
}

type arithParser struct {
	src string
	pos int
}

func (p *arithParser) eof() bool { return p.pos >= len(p.src) }

func (p *arithParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *arithParser) skipSpace() {
	for !p.eof() && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// expression := operand (op operand)*
func (p *arithParser) expression() (string, error) {
	first, err := p.operand()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(first)
	for {
		p.skipSpace()
		if p.eof() || p.peek() == ')' {
			return b.String(), nil
		}
		op := p.peek()
		if !strings.ContainsRune("+-*/^", rune(op)) {
			return "", fmt.Errorf("%w: unexpected %q at %d", errNotArithmetic, op, p.pos)
		}
		p.pos++
		if op == '*' && p.peek() == '*' {
			return "", fmt.Errorf("%w: unexpected '*' at %d", errNotArithmetic, p.pos)
		}
		next, err := p.operand()
		if err != nil {
			return "", err
		}
		b.WriteByte(' ')
		b.WriteByte(op)
		b.WriteByte(' ')
		b.WriteString(next)
	}
}

// operand := sign* (number | '(' expression ')')
func (p *arithParser) operand() (string, error) {
	var signs []byte
	for {
		p.skipSpace()
		if c := p.peek(); c == '+' || c == '-' {
			signs = append(signs, c)
			p.pos++
			continue
		}
		break
	}

	var out string
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		inner, err := p.expression()
		if err != nil {
			return "", err
		}
		if p.peek() != ')' {
			return "", fmt.Errorf("%w: missing ')'", errNotArithmetic)
		}
		p.pos++
		out = "(" + inner + ")"
	case isDigit(c) || c == '.':
		n, err := p.number()
		if err != nil {
			return "", err
		}
		out = n
	case p.eof():
		return "", fmt.Errorf("%w: unexpected end of expression", errNotArithmetic)
	default:
		return "", fmt.Errorf("%w: unexpected %q at %d", errNotArithmetic, c, p.pos)
	}

	for i := len(signs) - 1; i >= 0; i-- {
		out = "(" + string(signs[i]) + out + ")"
	}
	return out, nil
}

func (p *arithParser) number() (string, error) {
	start := p.pos
	for !p.eof() && isDigit(p.peek()) {
		p.pos++
	}
	if p.peek() == '.' {
		p.pos++
		for !p.eof() && isDigit(p.peek()) {
			p.pos++
		}
	}
	if p.src[start:p.pos] == "." {
		return "", fmt.Errorf("%w: lone '.' at %d", errNotArithmetic, start)
	}
	// Exponent, as FormatNumber writes outside [1e-6, 1e21).
	if c := p.peek(); c == 'e' || c == 'E' {
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		digits := p.pos
		for !p.eof() && isDigit(p.peek()) {
			p.pos++
		}
		if p.pos == digits {
			return "", fmt.Errorf("%w: missing exponent digits at %d", errNotArithmetic, p.pos)
		}
	}
	lit := p.src[start:p.pos]
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errNotArithmetic, err)
	}
	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out, nil
}

// concatQuoted joins a whitespace-insensitive chain of double-quoted segments
// like "a" + "b" into "ab". Input of any other shape is returned unchanged.
func concatQuoted(s string) string {
	stripped := strings.Join(strings.Fields(s), "")
	parts := strings.Split(stripped, "+")
	var b strings.Builder
	for _, part := range parts {
		if len(part) < 2 || part[0] != '"' || part[len(part)-1] != '"' {
			return s
		}
		b.WriteString(strings.ReplaceAll(part, `"`, ""))
	}
	return b.String()
}
