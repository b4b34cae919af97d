package lexer

import (
	"strconv"
	"strings"

	"github.com/lunalang/luna/errs"
)

// Lexer scans Luna source text one character at a time.
type Lexer struct {
	src  []byte
	pos  int
	line int
}

// NewLexer creates a Lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: []byte(src), pos: 0, line: 1}
}

// Scan runs a Lexer over src to completion. Invalid characters are
// accumulated rather than stopping the scan, and are returned together
// only if at least one was seen.
func Scan(src string) ([]Token, []*errs.Error) {
	lx := NewLexer(src)
	var tokens []Token
	var errors []*errs.Error
	for {
		tok, err := lx.NextToken()
		if err != nil {
			errors = append(errors, err)
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	if len(errors) > 0 {
		return nil, errors
	}
	return tokens, nil
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) current() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes and returns the current character, incrementing the
// line counter whenever a newline is consumed, including inside
// multi-line comments.
func (l *Lexer) advance() byte {
	c := l.current()
	l.pos++
	if c == '\n' {
		l.line++
	}
	return c
}

// skipWhitespaceAndComments discards spaces, tabs, carriage returns and
// both comment forms (`--` to end of line, `--[[ ]]` block). It does NOT
// consume bare newlines: those are significant tokens.
func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		switch c := l.current(); {
		case c == ' ' || c == '\t' || c == '\r':
			l.advance()
		case c == '-' && l.peekNext() == '-':
			l.advance()
			l.advance()
			if l.current() == '[' && l.peekNext() == '[' {
				l.advance()
				l.advance()
				for !l.atEnd() {
					if l.current() == ']' && l.peekNext() == ']' {
						l.advance()
						l.advance()
						break
					}
					l.advance()
				}
			} else {
				for !l.atEnd() && l.current() != '\n' {
					l.advance()
				}
			}
		default:
			return
		}
	}
}

// NextToken scans and returns exactly one token, dispatching on the
// current character.
func (l *Lexer) NextToken() (Token, *errs.Error) {
	l.skipWhitespaceAndComments()
	if l.atEnd() {
		return NewToken(EOF, "", l.line), nil
	}

	line := l.line
	c := l.advance()

	switch c {
	case '(':
		return NewToken(LEFT_PAREN, "(", line), nil
	case ')':
		return NewToken(RIGHT_PAREN, ")", line), nil
	case '{':
		return NewToken(LEFT_BRACE, "{", line), nil
	case '}':
		return NewToken(RIGHT_BRACE, "}", line), nil
	case ',':
		return NewToken(COMMA, ",", line), nil
	case ';':
		return NewToken(SEMICOLON, ";", line), nil
	case '+':
		return NewToken(PLUS, "+", line), nil
	case '*':
		return NewToken(STAR, "*", line), nil
	case '/':
		return NewToken(SLASH, "/", line), nil
	case '-':
		return NewToken(MINUS, "-", line), nil
	case '=':
		if l.current() == '=' {
			l.advance()
			return NewToken(EQUAL_EQ, "==", line), nil
		}
		return NewToken(EQUAL, "=", line), nil
	case '<':
		if l.current() == '=' {
			l.advance()
			return NewToken(LESS_EQ, "<=", line), nil
		}
		return NewToken(LESS, "<", line), nil
	case '>':
		if l.current() == '=' {
			l.advance()
			return NewToken(GREATER_EQ, ">=", line), nil
		}
		return NewToken(GREATER, ">", line), nil
	case '.':
		if l.current() == '.' {
			l.advance()
			return NewToken(CONCAT, "..", line), nil
		}
		return Token{}, errs.NewLexical(line, "a lone '.' is not a valid token, expected '..'")
	case '\n':
		return NewToken(NEWLINE, "\n", line), nil
	case '"':
		return l.scanString(line)
	default:
		switch {
		case isDigit(c):
			return l.scanNumber(c, line)
		case isAlpha(c):
			return l.scanIdentifier(c, line)
		default:
			return Token{}, errs.NewLexical(line, "unknown character %q", string(c))
		}
	}
}

// scanString reads characters up to the matching closing quote. Reaching
// EOF mid-string silently yields an EOF token rather than an error: an
// unterminated string is never reported as a lexical error.
func (l *Lexer) scanString(line int) (Token, *errs.Error) {
	var sb strings.Builder
	for {
		if l.atEnd() {
			return NewToken(EOF, "", l.line), nil
		}
		c := l.advance()
		if c == '"' {
			return NewToken(STRING, sb.String(), line), nil
		}
		sb.WriteByte(c)
	}
}

// scanNumber consumes digits and at most one '.'.
func (l *Lexer) scanNumber(first byte, line int) (Token, *errs.Error) {
	var sb strings.Builder
	sb.WriteByte(first)
	dotSeen := false
loop:
	for !l.atEnd() {
		c := l.current()
		switch {
		case isDigit(c):
			sb.WriteByte(c)
			l.advance()
		case c == '.' && !dotSeen:
			dotSeen = true
			sb.WriteByte(c)
			l.advance()
		default:
			break loop
		}
	}
	text := sb.String()
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return Token{}, errs.NewLexical(line, "malformed number literal %q", text)
	}
	return NewToken(NUMBER, text, line), nil
}

// scanIdentifier consumes an identifier, then classifies it as a keyword
// or a plain identifier. Continuation stops only at a small set of
// delimiter characters, not at operator characters, so a dotted name
// like `a.b` lexes as a single IDENTIFIER token (the parser later splits
// it on the last '.'). An operator glued directly to an identifier with
// no surrounding space (`a+b`) is swallowed into the identifier. The end
// of the source also ends the identifier, which is emitted as usual.
func (l *Lexer) scanIdentifier(first byte, line int) (Token, *errs.Error) {
	var sb strings.Builder
	sb.WriteByte(first)
	for !l.atEnd() {
		if isIdentStopChar(l.current()) {
			break
		}
		sb.WriteByte(l.advance())
	}
	text := sb.String()
	return NewToken(lookupIdent(text), text, line), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStopChar(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '(', ')', ',', ';', '=':
		return true
	default:
		return false
	}
}
