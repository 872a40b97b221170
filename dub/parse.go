package dub

import (
	"fmt"
	"strconv"
)

type Node interface {
	isNode()
}

func (Identifier) isNode() {}
func (Int) isNode()        {}
func (Float) isNode()      {}
func (String) isNode()     {}
func (Selector) isNode()   {}

type Command struct {
	Name Identifier
	Args []Node
}

type Identifier string
type Int int
type Float float64
type String string

// Parse parses a single command.
func Parse(input string) (Command, error) {
	cmds, err := ParseAll(input)
	if err != nil {
		return Command{}, err
	}
	switch len(cmds) {
	case 0:
		return Command{}, fmt.Errorf("empty command")
	case 1:
		return cmds[0], nil
	}
	return Command{}, fmt.Errorf("expected one command, got %d", len(cmds))
}

// ParseAll parses a line of commands separated by semicolons.
func ParseAll(input string) ([]Command, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := parser{tokens: tokens}
	return p.parse()
}

type parser struct {
	pos    int
	tokens []token
}

// next returns the current token and advances. Once the input is exhausted
// it keeps returning the final EOF token.
func (p *parser) next() token {
	t := p.peek()
	if t.typ != typeEOF {
		p.pos++
	}
	return t
}

func (p *parser) peek() token {
	if p.pos >= len(p.tokens) {
		return token{typ: typeEOF, pos: p.end()}
	}
	return p.tokens[p.pos]
}

func (p *parser) end() int {
	if len(p.tokens) == 0 {
		return 0
	}
	return p.tokens[len(p.tokens)-1].pos
}

func (p *parser) parse() ([]Command, error) {
	var cmds []Command
	for {
		switch token := p.peek(); token.typ {
		case typeEOF:
			return cmds, nil
		case typeSemicolon:
			p.next()
		default:
			cmd, err := p.command()
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, cmd)
		}
	}
}

func (p *parser) command() (Command, error) {
	var cmd Command
	token := p.next()
	if token.typ != typeIdentifier {
		return cmd, unexpected(token)
	}
	cmd.Name = Identifier(token.text)
	for {
		token := p.peek()
		if token.typ == typeEOF || token.typ == typeSemicolon {
			return cmd, nil
		}
		p.next()
		var arg Node
		switch token.typ {
		case typeIdentifier:
			arg = Identifier(token.text)
		case typeString:
			arg = String(token.text[1 : len(token.text)-1])
		case typeFloat:
			f, err := strconv.ParseFloat(token.text, 64)
			if err != nil {
				return cmd, err
			}
			arg = Float(f)
		case typeInt:
			n, err := strconv.Atoi(token.text)
			if err != nil {
				return cmd, err
			}
			arg = Int(n)
		case typeQuote:
			sel, err := p.selector()
			if err != nil {
				return cmd, err
			}
			arg = sel
		default:
			return cmd, unexpected(token)
		}
		cmd.Args = append(cmd.Args, arg)
	}
}

// selector parses the items following a quote, e.g. '1:4,7,9 or '*.
func (p *parser) selector() (Selector, error) {
	var sel Selector
	var list listMatch
	flush := func() {
		if len(list) > 0 {
			sel.matchers = append(sel.matchers, list)
			list = nil
		}
	}
	for {
		token := p.next()
		switch token.typ {
		case typeAsterisk:
			flush()
			sel.matchers = append(sel.matchers, matchAll)
		case typeInt:
			start, err := strconv.Atoi(token.text)
			if err != nil {
				return sel, err
			}
			if p.peek().typ != typeColon {
				list = append(list, start)
				break
			}
			p.next()
			t := p.next()
			if t.typ != typeInt {
				return sel, unexpected(t)
			}
			end, err := strconv.Atoi(t.text)
			if err != nil {
				return sel, err
			}
			if end < start {
				return sel, fmt.Errorf("invalid range %d:%d", start, end)
			}
			flush()
			sel.matchers = append(sel.matchers, rangeMatch{start: start, end: end})
		default:
			return sel, unexpected(token)
		}
		if p.peek().typ != typeComma {
			flush()
			return sel, nil
		}
		p.next()
	}
}

func unexpected(t token) error {
	if t.typ == typeEOF {
		return fmt.Errorf("unexpected end of input")
	}
	return fmt.Errorf("unexpected %s %q at position %d", t.typ, t.text, t.pos)
}
