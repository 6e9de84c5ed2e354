package expr

// Lexer tokenizes a when-condition expression.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int
	col     int
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) currentPos() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.currentPos()

	switch l.ch {
	case 0:
		return Token{Type: EOF, Pos: pos}
	case '(':
		l.readChar()
		return Token{Type: LPAREN, Literal: "(", Pos: pos}
	case ')':
		l.readChar()
		return Token{Type: RPAREN, Literal: ")", Pos: pos}
	case ',':
		l.readChar()
		return Token{Type: COMMA, Literal: ",", Pos: pos}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: EQ, Literal: "==", Pos: pos}
		}
		l.readChar()
		return Token{Type: EQ, Literal: "=", Pos: pos}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: NE, Literal: "!=", Pos: pos}
		}
		l.readChar()
		return Token{Type: NOT, Literal: "!", Pos: pos}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			l.readChar()
			return Token{Type: LE, Literal: "<=", Pos: pos}
		case '>':
			l.readChar()
			l.readChar()
			return Token{Type: NE, Literal: "<>", Pos: pos}
		}
		l.readChar()
		return Token{Type: LT, Literal: "<", Pos: pos}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: GE, Literal: ">=", Pos: pos}
		}
		l.readChar()
		return Token{Type: GT, Literal: ">", Pos: pos}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			l.readChar()
			return Token{Type: AND, Literal: "&&", Pos: pos}
		}
		l.readChar()
		return Token{Type: ILLEGAL, Literal: "&", Pos: pos}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			l.readChar()
			return Token{Type: OR, Literal: "||", Pos: pos}
		}
		l.readChar()
		return Token{Type: ILLEGAL, Literal: "|", Pos: pos}
	case '\'':
		return l.readString(pos)
	}

	if isLetter(l.ch) {
		lit := l.readIdentifier()
		return Token{Type: LookupIdent(lit), Literal: lit, Pos: pos}
	}
	if isDigit(l.ch) {
		return Token{Type: NUMBER, Literal: l.readNumber(), Pos: pos}
	}

	lit := string(l.ch)
	l.readChar()
	return Token{Type: ILLEGAL, Literal: lit, Pos: pos}
}

// readString reads a single-quoted string literal. A doubled quote ('')
// escapes a literal quote, SQL style.
func (l *Lexer) readString(pos Position) Token {
	var out []byte
	l.readChar() // consume opening quote
	for {
		if l.ch == 0 {
			return Token{Type: ILLEGAL, Literal: "unterminated string", Pos: pos}
		}
		if l.ch == '\'' {
			if l.peekChar() == '\'' {
				out = append(out, '\'')
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // consume closing quote
			return Token{Type: STRING, Literal: string(out), Pos: pos}
		}
		out = append(out, l.ch)
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
