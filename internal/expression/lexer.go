package expression

const (
	// DefaultMaxLine is the default maximum number of significant bytes in
	// one input line.
	DefaultMaxLine = 120

	// NoPosition is the next position returned for an INVALID token. The
	// caller must stop scanning the current expression.
	NoPosition = -1
)

// Scan reads the token that starts at or after pos. It never looks at bytes
// at or beyond limit, so a token that runs into the bound is cut short and
// the following scan yields TokenEOL. A non-positive limit means
// DefaultMaxLine.
//
// The returned position is where the next scan should start. For TokenEOL
// it is the end of the significant input; for TokenInvalid it is
// NoPosition.
func Scan(line string, pos, limit int) (Token, int) {
	end := significantLen(line, limit)
	if end == 0 || pos < 0 || pos >= end {
		return Token{Type: TokenEOL, Pos: clamp(pos, end)}, end
	}

	for pos < end && isSpace(line[pos]) {
		pos++
	}
	if pos == end {
		return Token{Type: TokenEOL, Pos: end}, end
	}

	ch := line[pos]
	next := byte(0)
	if pos+1 < end {
		next = line[pos+1]
	}

	switch ch {
	case '!':
		if next == '=' {
			return Token{Type: TokenCompare, Literal: "!=", Pos: pos}, pos + 2
		}
		return Token{Type: TokenInvalid, Literal: "!", Pos: pos}, NoPosition
	case '=':
		if next == '=' || next == '>' || next == '<' {
			return Token{Type: TokenCompare, Literal: line[pos : pos+2], Pos: pos}, pos + 2
		}
		return Token{Type: TokenAssign, Literal: "=", Pos: pos}, pos + 1
	case '>':
		if next == '=' || next == '<' {
			return Token{Type: TokenCompare, Literal: line[pos : pos+2], Pos: pos}, pos + 2
		}
		return Token{Type: TokenCompare, Literal: ">", Pos: pos}, pos + 1
	case '<':
		if next == '=' || next == '>' {
			return Token{Type: TokenCompare, Literal: line[pos : pos+2], Pos: pos}, pos + 2
		}
		return Token{Type: TokenCompare, Literal: "<", Pos: pos}, pos + 1
	}

	start := pos
	switch {
	case isDigit(ch):
		for pos < end && isDigit(line[pos]) {
			pos++
		}
		return Token{Type: TokenNumber, Literal: line[start:pos], Pos: start}, pos
	case isLower(ch):
		for pos < end && isLower(line[pos]) {
			pos++
		}
		return Token{Type: TokenVariable, Literal: line[start:pos], Pos: start}, pos
	case isOperator(ch):
		return Token{Type: TokenOperator, Literal: line[pos : pos+1], Pos: pos}, pos + 1
	case ch == '(':
		return Token{Type: TokenLParen, Literal: "(", Pos: pos}, pos + 1
	case ch == ')':
		return Token{Type: TokenRParen, Literal: ")", Pos: pos}, pos + 1
	}

	return Token{Type: TokenInvalid, Literal: string(ch), Pos: pos}, NoPosition
}

// Lexer tokenizes one calculator line.
type Lexer struct {
	input string
	limit int
	pos   int // start of the next scan
}

// NewLexer creates a new Lexer for the given input. A non-positive limit
// means DefaultMaxLine.
func NewLexer(input string, limit int) *Lexer {
	if limit <= 0 {
		limit = DefaultMaxLine
	}
	return &Lexer{input: input, limit: limit}
}

// NextToken returns the next token from the input. After an INVALID token
// the lexer is exhausted and keeps returning TokenEOL.
func (l *Lexer) NextToken() Token {
	tok, next := Scan(l.input, l.pos, l.limit)
	if next == NoPosition {
		next = significantLen(l.input, l.limit)
	}
	l.pos = next
	return tok
}

// Peek reports whether anything other than blanks is left without
// consuming it: TokenBlank when more content follows, TokenEOL otherwise.
func (l *Lexer) Peek() TokenType {
	end := significantLen(l.input, l.limit)
	for pos := l.pos; pos < end; pos++ {
		if !isSpace(l.input[pos]) {
			return TokenBlank
		}
	}
	return TokenEOL
}

// Pos returns the offset where the next scan starts.
func (l *Lexer) Pos() int {
	return l.pos
}

// Rest returns the unscanned part of the significant input.
func (l *Lexer) Rest() string {
	end := significantLen(l.input, l.limit)
	if l.pos >= end {
		return ""
	}
	return l.input[l.pos:end]
}

// Tokenize scans the whole line and returns every token up to and including
// the terminating EOL or INVALID token.
func Tokenize(line string, limit int) []Token {
	l := NewLexer(line, limit)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == TokenEOL || tok.Type == TokenInvalid {
			return toks
		}
	}
}

func significantLen(line string, limit int) int {
	if limit <= 0 {
		limit = DefaultMaxLine
	}
	if len(line) < limit {
		return len(line)
	}
	return limit
}

func clamp(pos, end int) int {
	if pos < 0 {
		return 0
	}
	if pos > end {
		return end
	}
	return pos
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isLower(ch byte) bool {
	return 'a' <= ch && ch <= 'z'
}

func isOperator(ch byte) bool {
	switch ch {
	case '+', '-', '*', '/', '%', '^':
		return true
	default:
		return false
	}
}
