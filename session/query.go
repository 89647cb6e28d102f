package session

import (
	"fmt"
	"strconv"
	"strings"
)

// The summary query language: comparisons joined by "and"/"or", with
// parentheses for grouping. Operands are column names (backtick-quote
// the ones that start with a digit, like `16S_rRNA`), numbers, or
// quoted strings. A comparison goes numeric when both sides parse as
// numbers and falls back to string ordering otherwise.
//
//	Completeness >= 90 and Contamination <= 5
//	(binner == 'metabat' or binner == 'semibin') and GC_Content < 0.5

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp
	tokAnd
	tokOr
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

func isIdentByte(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

func lexQuery(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == '\'' || c == '"':
			j := strings.IndexByte(src[i+1:], c)
			if j < 0 {
				return nil, fmt.Errorf("unterminated string starting at %q", src[i:])
			}
			toks = append(toks, token{tokString, src[i+1 : i+1+j]})
			i += j + 2
		case c == '`':
			j := strings.IndexByte(src[i+1:], '`')
			if j < 0 {
				return nil, fmt.Errorf("unterminated backtick name starting at %q", src[i:])
			}
			toks = append(toks, token{tokIdent, src[i+1 : i+1+j]})
			i += j + 2
		case c == '>' || c == '<' || c == '=' || c == '!':
			if i+1 < len(src) && src[i+1] == '=' {
				toks = append(toks, token{tokOp, src[i : i+2]})
				i += 2
			} else if c == '>' || c == '<' {
				toks = append(toks, token{tokOp, string(c)})
				i++
			} else {
				return nil, fmt.Errorf("invalid operator %q", string(c))
			}
		case c >= '0' && c <= '9' || c == '.' || c == '-':
			start := i
			i++
			for i < len(src) && (src[i] >= '0' && src[i] <= '9' || src[i] == '.') {
				i++
			}
			if src[start:i] == "-" || src[start:i] == "." || src[start:i] == "-." {
				return nil, fmt.Errorf("malformed number %q", src[start:i])
			}
			toks = append(toks, token{tokNumber, src[start:i]})
		case isIdentByte(c, true):
			start := i
			for i < len(src) && isIdentByte(src[i], false) {
				i++
			}
			switch word := src[start:i]; word {
			case "and":
				toks = append(toks, token{tokAnd, word})
			case "or":
				toks = append(toks, token{tokOr, word})
			default:
				toks = append(toks, token{tokIdent, word})
			}
		default:
			return nil, fmt.Errorf("unexpected character %q", string(c))
		}
	}
	return append(toks, token{tokEOF, ""}), nil
}

// queryNode is one node of the parsed expression tree.
type queryNode interface {
	eval(get func(string) (string, bool)) (bool, error)
}

type boolNode struct {
	op          string // "and" or "or"
	left, right queryNode
}

func (n *boolNode) eval(get func(string) (string, bool)) (bool, error) {
	lv, err := n.left.eval(get)
	if err != nil {
		return false, err
	}
	if n.op == "and" && !lv {
		return false, nil
	}
	if n.op == "or" && lv {
		return true, nil
	}
	return n.right.eval(get)
}

const (
	operandColumn = iota
	operandLiteral
)

type operand struct {
	kind int
	text string
}

func (o operand) resolve(get func(string) (string, bool)) (string, error) {
	if o.kind == operandLiteral {
		return o.text, nil
	}
	v, ok := get(o.text)
	if !ok {
		return "", fmt.Errorf("unknown column %q", o.text)
	}
	return v, nil
}

type cmpNode struct {
	left  operand
	op    string
	right operand
}

func (n *cmpNode) eval(get func(string) (string, bool)) (bool, error) {
	lv, err := n.left.resolve(get)
	if err != nil {
		return false, err
	}
	rv, err := n.right.resolve(get)
	if err != nil {
		return false, err
	}

	lf, lerr := strconv.ParseFloat(lv, 64)
	rf, rerr := strconv.ParseFloat(rv, 64)
	if lerr == nil && rerr == nil {
		switch n.op {
		case "==":
			return lf == rf, nil
		case "!=":
			return lf != rf, nil
		case "<":
			return lf < rf, nil
		case "<=":
			return lf <= rf, nil
		case ">":
			return lf > rf, nil
		case ">=":
			return lf >= rf, nil
		}
	}

	c := strings.Compare(lv, rv)
	switch n.op {
	case "==":
		return c == 0, nil
	case "!=":
		return c != 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	}
	return false, fmt.Errorf("unsupported operator %q", n.op)
}

// QueryExpr is a parsed summary query, reusable across rows.
type QueryExpr struct {
	root queryNode
}

// ParseQuery compiles a query string into an expression tree.
func ParseQuery(src string) (*QueryExpr, error) {
	toks, err := lexQuery(src)
	if err != nil {
		return nil, err
	}
	p := &queryParser{toks: toks}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q after end of expression", p.peek().text)
	}
	return &QueryExpr{root: root}, nil
}

// Eval runs the expression against one row. get looks a column up by
// name; reporting a column as absent fails the whole evaluation rather
// than treating it as empty.
func (q *QueryExpr) Eval(get func(string) (string, bool)) (bool, error) {
	return q.root.eval(get)
}

type queryParser struct {
	toks []token
	pos  int
}

func (p *queryParser) peek() token { return p.toks[p.pos] }

func (p *queryParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *queryParser) parseOr() (queryNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &boolNode{op: "or", left: left, right: right}
	}
	return left, nil
}

func (p *queryParser) parseAnd() (queryNode, error) {
	left, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		left = &boolNode{op: "and", left: left, right: right}
	}
	return left, nil
}

func (p *queryParser) parseCmp() (queryNode, error) {
	if p.peek().kind == tokLParen {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("expected ')', got %q", p.peek().text)
		}
		p.next()
		return inner, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op := p.next()
	if op.kind != tokOp {
		return nil, fmt.Errorf("expected comparison operator, got %q", op.text)
	}
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &cmpNode{left: left, op: op.text, right: right}, nil
}

func (p *queryParser) parseOperand() (operand, error) {
	t := p.next()
	switch t.kind {
	case tokIdent:
		return operand{kind: operandColumn, text: t.text}, nil
	case tokNumber, tokString:
		return operand{kind: operandLiteral, text: t.text}, nil
	default:
		return operand{}, fmt.Errorf("expected column, number or string, got %q", t.text)
	}
}
