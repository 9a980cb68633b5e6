package sym

// Parser consumes the token stream and produces a Document.
type Parser struct {
	stream *TokenStream
	origin string
}

// ParseAST lexes and parses a source without resolving imports or
// variables. Useful for inspecting documents and for testing the front of
// the pipeline in isolation.
func ParseAST(input []byte, origin string) (*Document, error) {
	doc, err := parseAST(input, origin)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// parseAST is the internal entry point; it returns the concrete error
// type so the resolver can wrap it without a type assertion.
func parseAST(input []byte, origin string) (*Document, *Error) {
	lexer := NewLexer(string(input), origin)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, err
	}

	p := &Parser{
		stream: NewTokenStream(tokens),
		origin: origin,
	}
	return p.parseDocument()
}

func (p *Parser) errAt(kind ErrorKind, pos Position, format string, args ...interface{}) *Error {
	e := errf(kind, pos, format, args...)
	e.Origin = p.origin
	return e
}

// parseDocument reads the import prefix, then the top-level block
// sequence, and classifies the blocks into defs and data.
func (p *Parser) parseDocument() (*Document, *Error) {
	doc := &Document{Origin: p.origin}

	for p.stream.Peek().Type == TokenImport {
		tok := p.stream.Advance()
		doc.Imports = append(doc.Imports, Import{Path: tok.Text, Pos: tok.Pos})
	}

	var blocks []*Node

	for !p.stream.AtEnd() {
		tok := p.stream.Peek()
		if tok.Type == TokenImport {
			return nil, p.errAt(ErrParse, tok.Pos, "@import must appear before the first block")
		}
		node, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, node)
	}

	if len(blocks) == 0 {
		return nil, p.errAt(ErrParse, p.stream.Peek().Pos, "empty document")
	}

	// All blocks but the last contribute variable bindings; the final
	// block is the data block no matter what it contains.
	for _, b := range blocks[:len(blocks)-1] {
		defs, err := p.classifyDefs(b)
		if err != nil {
			return nil, err
		}
		doc.Defs = append(doc.Defs, defs)
	}
	doc.Data = blocks[len(blocks)-1]

	return doc, nil
}

// classifyDefs checks that a non-final block is a pure definitions block
// and extracts its bindings in source order.
func (p *Parser) classifyDefs(node *Node) (DefsBlock, *Error) {
	if node.kind != NodeObject {
		return DefsBlock{}, p.errAt(ErrParse, node.pos,
			"only a definitions block may precede the data block")
	}
	defs := DefsBlock{Pos: node.pos}
	seen := make(map[string]bool)
	for _, f := range node.fields {
		if !f.VarDef {
			return DefsBlock{}, p.errAt(ErrParse, f.Pos,
				"definitions block mixes data key :%s with variable definitions", f.Key)
		}
		if seen[f.Key] && !f.Override {
			return DefsBlock{}, p.errAt(ErrVariable, f.Pos,
				"duplicate variable $%s without override (use $%s! to override)", f.Key, f.Key)
		}
		seen[f.Key] = true
		defs.Bindings = append(defs.Bindings, Binding{
			Name:     f.Key,
			Override: f.Override,
			Value:    f.Value,
			Pos:      f.Pos,
		})
	}
	return defs, nil
}

// parseValue parses any value.
func (p *Parser) parseValue() (*Node, *Error) {
	tok := p.stream.Peek()

	switch tok.Type {
	case TokenLBrace:
		return p.parseObject()

	case TokenLBracket:
		return p.parseArray()

	case TokenNull:
		p.stream.Advance()
		return litNode(Null(), tok.Pos), nil

	case TokenTrue:
		p.stream.Advance()
		return litNode(Bool(true), tok.Pos), nil

	case TokenFalse:
		p.stream.Advance()
		return litNode(Bool(false), tok.Pos), nil

	case TokenInt:
		p.stream.Advance()
		return litNode(Int(tok.Int), tok.Pos), nil

	case TokenFloat:
		p.stream.Advance()
		return litNode(Float(tok.Float), tok.Pos), nil

	case TokenSymbol:
		p.stream.Advance()
		return litNode(Symbol(tok.Text), tok.Pos), nil

	case TokenStrChunk, TokenStrCont, TokenVarRef:
		return p.parseStringish()

	default:
		return nil, p.errAt(ErrParse, tok.Pos, "unexpected token %s", tok.Type)
	}
}

// parseStringish assembles the run of string-scan tokens the lexer
// produced for one value: text chunks, continuation lines and embedded
// variable references.
func (p *Parser) parseStringish() (*Node, *Error) {
	first := p.stream.Peek()

	// Whole-value reference: a lone $name may resolve to any value.
	if first.Type == TokenVarRef && !isScanToken(peekType(p.stream, 1)) {
		p.stream.Advance()
		return varRefNode(first.Text, first.Pos), nil
	}

	var segs []Segment
	var text string
	var textPos Position
	haveText := false
	hasVar := false

	for isScanToken(p.stream.Peek().Type) {
		tok := p.stream.Advance()
		switch tok.Type {
		case TokenStrChunk:
			if !haveText {
				textPos = tok.Pos
			}
			text += tok.Text
			haveText = true
		case TokenStrCont:
			if !haveText {
				textPos = tok.Pos
			}
			text += "\n" + tok.Text
			haveText = true
		case TokenVarRef:
			if haveText {
				segs = append(segs, Segment{Text: text, Pos: textPos})
				text = ""
				haveText = false
			}
			segs = append(segs, Segment{Var: tok.Text, Pos: tok.Pos})
			hasVar = true
		}
	}
	if haveText {
		segs = append(segs, Segment{Text: text, Pos: textPos})
	}

	if !hasVar {
		// Plain string, possibly multiline: a single text segment.
		joined := ""
		if len(segs) > 0 {
			joined = segs[0].Text
		}
		return litNode(Str(joined), first.Pos), nil
	}
	return interpNode(segs, first.Pos), nil
}

func isScanToken(t TokenType) bool {
	return t == TokenStrChunk || t == TokenStrCont || t == TokenVarRef
}

func peekType(ts *TokenStream, n int) TokenType {
	if ts.pos+n >= len(ts.tokens) {
		return TokenEOF
	}
	return ts.tokens[ts.pos+n].Type
}

// parseObject parses { :key value, ... } after the lexer has validated
// the shape. Duplicate data keys are rejected here; duplicate variable
// definitions are checked by classifyDefs for defs blocks and by the
// resolver everywhere else.
func (p *Parser) parseObject() (*Node, *Error) {
	open := p.stream.Advance() // {

	var fields []Field
	seen := make(map[string]Position)

	for {
		tok := p.stream.Peek()

		switch tok.Type {
		case TokenRBrace:
			p.stream.Advance()
			return objectNode(fields, open.Pos), nil

		case TokenKey, TokenVarDef:
			field, err := p.parseField(tok)
			if err != nil {
				return nil, err
			}
			if !field.VarDef {
				if prev, dup := seen[field.Key]; dup {
					e := p.errAt(ErrParse, tok.Pos, "duplicate key :%s", field.Key)
					e.Related = []Position{prev}
					return nil, e
				}
				seen[field.Key] = tok.Pos
			}
			fields = append(fields, field)

			if p.stream.Match(TokenSeparator) {
				continue
			}
			if p.stream.Peek().Type != TokenRBrace {
				return nil, p.errAt(ErrParse, p.stream.Peek().Pos,
					"expected ',' separator or '}', got %s", p.stream.Peek().Type)
			}

		default:
			return nil, p.errAt(ErrParse, tok.Pos, "expected ':' or '$' at start of field, got %s", tok.Type)
		}
	}
}

// parseField parses one :key or $name entry with its value.
func (p *Parser) parseField(tok Token) (Field, *Error) {
	p.stream.Advance()

	value, err := p.parseValue()
	if err != nil {
		return Field{}, err
	}

	if tok.Type == TokenVarDef {
		return Field{
			Key:      tok.Text,
			VarDef:   true,
			Override: tok.Override,
			Value:    value,
			Pos:      tok.Pos,
		}, nil
	}
	return Field{
		Key:      tok.Text,
		Modifier: tok.Mod,
		Value:    value,
		Pos:      tok.Pos,
	}, nil
}

// parseArray parses [ value, ... ].
func (p *Parser) parseArray() (*Node, *Error) {
	open := p.stream.Advance() // [

	var items []*Node

	for {
		tok := p.stream.Peek()

		if tok.Type == TokenRBracket {
			p.stream.Advance()
			return arrayNode(items, open.Pos), nil
		}

		elem, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, elem)

		if p.stream.Match(TokenSeparator) {
			continue
		}
		if p.stream.Peek().Type != TokenRBracket {
			return nil, p.errAt(ErrParse, p.stream.Peek().Pos,
				"expected ',' separator or ']', got %s", p.stream.Peek().Type)
		}
	}
}
