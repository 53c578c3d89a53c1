package parser

import (
	"strconv"

	"github.com/jlvm/jlvm/internal/value"
)

func (p *Parser) parseIntLiteral() value.Value {
	n, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errorf("invalid integer literal %q: %v", p.curToken.Literal, err)
		return value.Int64(0)
	}
	return value.Int64(n)
}

func (p *Parser) parseFloatLiteral() value.Value {
	f, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorf("invalid float literal %q: %v", p.curToken.Literal, err)
		return value.Float64(0)
	}
	return value.Float64(f)
}
