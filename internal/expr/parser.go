package expr

import "github.com/coredbg/clrdbg/internal/dbgerr"

// Parser is a recursive-descent, precedence-climbing parser over a
// pre-lexed token stream, grounded on
// original_source/third_party/cloud-debug-java/csharp_expression.cc's
// CreateEvaluator dispatch (there driven by ANTLR; here hand-written
// since this module has no generated-parser dependency in the pack).
type Parser struct {
	tokens []Token
	pos    int
}

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) atEnd() bool {
	return p.peek().Kind == TokEOF
}

func (p *Parser) expectPunct(text string) error {
	tok := p.peek()
	if tok.Kind != TokPunct || tok.Text != text {
		return dbgerr.New(dbgerr.Type, "expected '"+text+"' in expression")
	}
	p.advance()
	return nil
}

func (p *Parser) isPunct(text string) bool {
	tok := p.peek()
	return tok.Kind == TokPunct && tok.Text == text
}

// binaryLevels lists operator groups from lowest to highest precedence.
var binaryLevels = [][]string{
	{"||"},
	{"&&"},
	{"|"},
	{"^"},
	{"&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "%"},
}

// ParseExpression parses a full expression including the ternary
// conditional operator, the lowest-precedence construct in spec.md §4.5.
func (p *Parser) ParseExpression() (Node, error) {
	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if p.isPunct("?") {
		p.advance()
		thenNode, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		elseNode, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		return &ConditionalNode{cond: cond, thenExpr: thenNode, elseExpr: elseNode}, nil
	}
	return cond, nil
}

func (p *Parser) parseBinary(level int) (Node, error) {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Kind != TokPunct {
			return left, nil
		}
		matched := false
		for _, op := range binaryLevels[level] {
			if tok.Text == op {
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{op: tok.Text, left: left, right: right}
	}
}

func (p *Parser) parseUnary() (Node, error) {
	tok := p.peek()
	if tok.Kind == TokPunct && (tok.Text == "+" || tok.Text == "-" || tok.Text == "!" || tok.Text == "~") {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryNode{op: tok.Text, operand: operand}, nil
	}
	if tok.Kind == TokPunct && tok.Text == "(" {
		if node, ok, err := p.tryParseCast(); err != nil {
			return nil, err
		} else if ok {
			return node, nil
		}
	}
	return p.parsePostfix()
}

// tryParseCast attempts `(TypeName) unary-expr`; on mismatch it restores
// the parser position and returns ok=false so the caller falls back to
// a parenthesised expression, mirroring the cast/paren ambiguity
// csharp_expression.cc resolves with its own lookahead.
func (p *Parser) tryParseCast() (Node, bool, error) {
	start := p.pos
	p.advance() // consume '('

	if p.peek().Kind != TokIdent {
		p.pos = start
		return nil, false, nil
	}
	typeName := p.advance().Text
	for p.isPunct(".") {
		p.advance()
		if p.peek().Kind != TokIdent {
			p.pos = start
			return nil, false, nil
		}
		typeName += "." + p.advance().Text
	}

	if !p.isPunct(")") {
		p.pos = start
		return nil, false, nil
	}
	p.advance()

	next := p.peek()
	canStartUnary := next.Kind == TokIdent || next.Kind == TokInt || next.Kind == TokFloat ||
		next.Kind == TokString || next.Kind == TokChar || next.Kind == TokTrue ||
		next.Kind == TokFalse || next.Kind == TokNull || next.Kind == TokThis ||
		(next.Kind == TokPunct && (next.Text == "(" || next.Text == "!" || next.Text == "~"))
	if !canStartUnary {
		p.pos = start
		return nil, false, nil
	}

	operand, err := p.parseUnary()
	if err != nil {
		return nil, false, err
	}
	return &TypeCastNode{typeName: typeName, operand: operand}, true, nil
}

func (p *Parser) parsePostfix() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Kind != TokPunct {
			return node, nil
		}
		switch tok.Text {
		case ".":
			p.advance()
			nameTok := p.peek()
			if nameTok.Kind != TokIdent {
				return nil, dbgerr.New(dbgerr.Type, "expected member name after '.'")
			}
			p.advance()
			if p.isPunct("(") {
				args, err := p.parseArgList()
				if err != nil {
					return nil, err
				}
				node = &CallNode{receiver: node, method: nameTok.Text, args: args}
			} else {
				node = &MemberAccessNode{receiver: node, member: nameTok.Text}
			}
		case "[":
			p.advance()
			index, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			node = &IndexerNode{receiver: node, index: index}
		case "(":
			id, ok := node.(*IdentifierNode)
			if !ok {
				return node, nil
			}
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			node = &CallNode{method: id.name, args: args}
		default:
			return node, nil
		}
	}
}

func (p *Parser) parseArgList() ([]Node, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []Node
	if p.isPunct(")") {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokInt:
		p.advance()
		return &LiteralNode{kind: literalInt, intVal: tok.IntVal}, nil
	case TokFloat:
		p.advance()
		return &LiteralNode{kind: literalFloat, fltVal: tok.FltVal}, nil
	case TokString:
		p.advance()
		return &LiteralNode{kind: literalString, strVal: tok.Text}, nil
	case TokChar:
		p.advance()
		return &LiteralNode{kind: literalChar, intVal: tok.IntVal}, nil
	case TokTrue:
		p.advance()
		return &LiteralNode{kind: literalBool, boolVal: true}, nil
	case TokFalse:
		p.advance()
		return &LiteralNode{kind: literalBool, boolVal: false}, nil
	case TokNull:
		p.advance()
		return &LiteralNode{kind: literalNull}, nil
	case TokThis:
		p.advance()
		return &IdentifierNode{name: "this"}, nil
	case TokIdent:
		p.advance()
		return &IdentifierNode{name: tok.Text}, nil
	case TokPunct:
		if tok.Text == "(" {
			p.advance()
			inner, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	return nil, dbgerr.New(dbgerr.Type, "unexpected token in expression: "+tok.Text)
}
