package descriptor

import (
	"strconv"
	"strings"
)

type parser struct {
	src    string
	pos    int
	bounds map[string]Type
}

func newParser(src string) *parser {
	return &parser{src: src}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

// parseType parses one field type (or type variable) at the cursor.
func (p *parser) parseType() (Type, bool) {
	if p.eof() {
		return nil, false
	}
	c := p.src[p.pos]
	switch c {
	case '[':
		p.pos++
		elem, ok := p.parseType()
		if !ok {
			return nil, false
		}
		return Array{Elem: elem}, true
	case 'L':
		return p.parseClass()
	case 'T':
		return p.parseTypeVariable()
	case 'V':
		return nil, false
	}
	if name, ok := primitives[c]; ok {
		p.pos++
		return Primitive{Name: name}, true
	}
	return nil, false
}

// classEnd returns the index of the ';' closing the class type starting at
// start, skipping semicolons nested inside type argument lists.
func (p *parser) classEnd(start int) int {
	depth := 0
	for i := start + 1; i < len(p.src); i++ {
		switch p.src[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return -1
			}
		case ';':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (p *parser) parseClass() (Type, bool) {
	end := p.classEnd(p.pos)
	if end < 0 {
		return nil, false
	}
	p.pos++

	var result Type
	for {
		nameStart := p.pos
		for p.pos < end {
			c := p.src[p.pos]
			if c == '<' || c == '.' {
				break
			}
			p.pos++
		}
		name := p.src[nameStart:p.pos]
		if name == "" {
			return nil, false
		}

		var args []Type
		if p.src[p.pos] == '<' {
			p.pos++
			for p.pos < end && p.src[p.pos] != '>' {
				arg, ok := p.parseTypeArgument()
				if !ok {
					return nil, false
				}
				args = append(args, arg)
			}
			if p.pos >= end || p.src[p.pos] != '>' || len(args) == 0 {
				return nil, false
			}
			p.pos++
		}

		result = makeClass(result, name, args)

		if p.pos < end && p.src[p.pos] == '.' {
			p.pos++
			continue
		}
		break
	}

	if p.pos != end {
		return nil, false
	}
	p.pos++
	return result, true
}

func makeClass(owner Type, name string, args []Type) Type {
	if owner == nil && len(args) == 0 {
		return Class{Name: SourceName(name)}
	}
	g := Generic{Owner: owner, Base: name}
	if owner == nil {
		g.Base = SourceName(name)
	}
	if strings.HasSuffix(g.Base, "Map") && len(args) == 2 {
		g.Key, g.Value = args[0], args[1]
	} else {
		g.Args = args
	}
	return g
}

func (p *parser) parseTypeArgument() (Type, bool) {
	switch c := p.peek(); c {
	case '*':
		p.pos++
		return Wildcard{Kind: WildcardAny}, true
	case '+', '-':
		p.pos++
		bound, ok := p.parseType()
		if !ok {
			return nil, false
		}
		return Wildcard{Kind: WildcardKind(c), Bound: bound}, true
	}
	return p.parseType()
}

func (p *parser) parseTypeVariable() (Type, bool) {
	semi := strings.IndexByte(p.src[p.pos:], ';')
	if semi <= 1 {
		return nil, false
	}
	name := p.src[p.pos+1 : p.pos+semi]
	if strings.ContainsAny(name, "<>/[") {
		return nil, false
	}
	p.pos += semi + 1
	return TypeVariable{Name: name, Bound: p.bound(name)}, true
}

func (p *parser) bound(name string) Type {
	if b, ok := p.bounds[name]; ok {
		return b
	}
	return Class{Name: ObjectClass}
}

// parseTypeParams parses a <T:Bound U::Iface> header and binds every
// variable to its first declared bound.
func (p *parser) parseTypeParams() ([]TypeVariable, bool) {
	if p.peek() != '<' {
		return nil, true
	}
	p.pos++

	var params []TypeVariable
	for !p.eof() && p.peek() != '>' {
		colon := strings.IndexByte(p.src[p.pos:], ':')
		if colon <= 0 {
			return nil, false
		}
		name := p.src[p.pos : p.pos+colon]
		p.pos += colon + 1

		var bound Type
		if c := p.peek(); c == 'L' || c == 'T' || c == '[' {
			t, ok := p.parseType()
			if !ok {
				return nil, false
			}
			bound = t
		}
		for p.peek() == ':' {
			p.pos++
			t, ok := p.parseType()
			if !ok {
				return nil, false
			}
			if bound == nil {
				bound = t
			}
		}
		if bound == nil {
			bound = Class{Name: ObjectClass}
		}

		if p.bounds == nil {
			p.bounds = make(map[string]Type)
		}
		p.bounds[name] = bound
		params = append(params, TypeVariable{Name: name, Bound: bound})
	}
	if p.eof() || len(params) == 0 {
		return nil, false
	}
	p.pos++
	return params, true
}

func (p *parser) parseMethod() (*Method, bool) {
	m := &Method{}
	typeParams, ok := p.parseTypeParams()
	if !ok {
		return nil, false
	}
	m.TypeParams = typeParams

	if p.peek() != '(' {
		return nil, false
	}
	p.pos++
	for !p.eof() && p.peek() != ')' {
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		m.Params = append(m.Params, t)
	}
	if p.eof() {
		return nil, false
	}
	p.pos++

	if p.peek() == 'V' {
		p.pos++
		m.Return = Void
	} else {
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		m.Return = t
	}

	for p.peek() == '^' {
		p.pos++
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		m.Throws = append(m.Throws, t)
	}
	return m, true
}

func (p *parser) parseClassSignature() (*ClassSignature, bool) {
	sig := &ClassSignature{}
	typeParams, ok := p.parseTypeParams()
	if !ok {
		return nil, false
	}
	sig.TypeParams = typeParams

	if p.peek() != 'L' {
		return nil, false
	}
	super, ok := p.parseType()
	if !ok {
		return nil, false
	}
	sig.Super = super
	for !p.eof() {
		if p.peek() != 'L' {
			return nil, false
		}
		iface, ok := p.parseType()
		if !ok {
			return nil, false
		}
		sig.Interfaces = append(sig.Interfaces, iface)
	}
	return sig, true
}

// Next parses a single type off the front of s and returns it together with
// the number of bytes it consumed. It returns (nil, 0) when s does not start
// with a type.
func Next(s string) (Type, int) {
	p := newParser(s)
	t, ok := p.parseType()
	if !ok {
		return nil, 0
	}
	return t, p.pos
}

// ParseField parses a field descriptor or field signature. The whole string
// must be consumed; otherwise the fallback name is returned.
func ParseField(s string) Type {
	p := newParser(s)
	if t, ok := p.parseType(); ok && p.eof() {
		return t
	}
	return fallback(s)
}

// ParseMethod parses a method descriptor or generic method signature. It
// returns nil when s is not a complete method descriptor.
func ParseMethod(s string) *Method {
	p := newParser(s)
	m, ok := p.parseMethod()
	if !ok || !p.eof() {
		return nil
	}
	return m
}

// ParseClassSignature parses the Signature attribute of a class. It returns
// nil when s is not a complete class signature.
func ParseClassSignature(s string) *ClassSignature {
	p := newParser(s)
	sig, ok := p.parseClassSignature()
	if !ok || !p.eof() {
		return nil
	}
	return sig
}

// Parse resolves any descriptor-like string: a method descriptor or
// signature, a field descriptor or signature, or a name. Numbers are returned
// unchanged and anything unrecognised falls back to a dotted name.
func Parse(s string) Type {
	if s == "" {
		return Class{}
	}
	if isNumber(s) {
		return Class{Name: s}
	}
	switch s[0] {
	case '(', '<':
		if m := ParseMethod(s); m != nil {
			return *m
		}
		if s[0] == '<' {
			if sig := ParseClassSignature(s); sig != nil {
				return *sig
			}
		}
	}
	if s == "V" {
		return Void
	}
	return ParseField(s)
}

// Name is Parse rendered as a source-level name.
func Name(s string) string {
	return Parse(s).String()
}

// ClassName renders the name stored in a CONSTANT_Class entry. Array
// classes are stored as descriptors, everything else as internal names.
func ClassName(internal string) string {
	if strings.HasPrefix(internal, "[") {
		return ParseField(internal).String()
	}
	return SourceName(internal)
}

func fallback(s string) Type {
	if code, ok := primitiveCodes[s]; ok {
		return Primitive{Name: primitives[code]}
	}
	return Class{Name: SourceName(s)}
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
