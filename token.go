package sheetcalc

import "regexp"

// TokenKind classifies a formula token.
type TokenKind int

const (
	TokenRef    TokenKind = iota // REF(A0)
	TokenSum                     // SUM(A0..B2)
	TokenAvg                     // AVG(A0..B2)
	TokenLookup                  // $(SYMBOL)
)

func (k TokenKind) String() string {
	switch k {
	case TokenRef:
		return "REF"
	case TokenSum:
		return "SUM"
	case TokenAvg:
		return "AVG"
	case TokenLookup:
		return "LOOKUP"
	}
	return "UNKNOWN"
}

// Token is one recognized function call inside a cell's raw input.
type Token struct {
	Kind   TokenKind
	Text   string // the matched source text, e.g. "SUM(A0..B2)"
	First  Coord  // referenced cell, or first corner of a range
	Last   Coord  // second corner of a range; equals First for REF
	Symbol string // lookup symbol for TokenLookup
}

var (
	// formulaTokenRegex matches NAME(coord) and NAME(coord..coord) for any
	// upper-case name; only REF, SUM and AVG are given meaning.
	formulaTokenRegex = regexp.MustCompile(`([A-Z]+)\(([A-Z]+\d+)(?:\.\.([A-Z]+\d+))?\)`)
	lookupTokenRegex  = regexp.MustCompile(`\$\(([A-Z]+)\)`)
	coordRegex        = regexp.MustCompile(`[A-Z]+\d+`)
)

// ScanTokens returns the distinct cell tokens (REF, SUM, AVG) of raw in order
// of first appearance. Calls with unknown names or the wrong arity, and
// tokens whose coordinates do not parse, are skipped.
func ScanTokens(raw string) []Token {
	var tokens []Token
	seen := make(map[string]struct{})
	for _, m := range formulaTokenRegex.FindAllStringSubmatch(raw, -1) {
		if _, ok := seen[m[0]]; ok {
			continue
		}
		tok, ok := parseFormulaToken(m[0], m[1], m[2], m[3])
		if !ok {
			continue
		}
		seen[m[0]] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

func parseFormulaToken(text, name, first, last string) (Token, bool) {
	var kind TokenKind
	switch {
	case name == "REF" && last == "":
		kind = TokenRef
	case name == "SUM" && last != "":
		kind = TokenSum
	case name == "AVG" && last != "":
		kind = TokenAvg
	default:
		return Token{}, false
	}

	a, err := ParseCoord(first)
	if err != nil {
		return Token{}, false
	}
	b := a
	if last != "" {
		if b, err = ParseCoord(last); err != nil {
			return Token{}, false
		}
	}
	return Token{Kind: kind, Text: text, First: a, Last: b}, true
}

// ScanLookups returns the distinct $(SYMBOL) tokens of raw in order of first appearance.
func ScanLookups(raw string) []Token {
	var tokens []Token
	seen := make(map[string]struct{})
	for _, m := range lookupTokenRegex.FindAllStringSubmatch(raw, -1) {
		if _, ok := seen[m[0]]; ok {
			continue
		}
		seen[m[0]] = struct{}{}
		tokens = append(tokens, Token{Kind: TokenLookup, Text: m[0], Symbol: m[1]})
	}
	return tokens
}

// HasTokens reports whether raw contains any formula or lookup token.
func HasTokens(raw string) bool {
	return len(ScanTokens(raw)) > 0 || lookupTokenRegex.MatchString(raw)
}

// substitute replaces every occurrence of each token text in raw with its
// resolved value, in a single left-to-right pass. Matches with no entry in
// values are left as they are.
func substitute(re *regexp.Regexp, raw string, values map[string]string) string {
	if len(values) == 0 {
		return raw
	}
	return re.ReplaceAllStringFunc(raw, func(match string) string {
		if v, ok := values[match]; ok {
			return v
		}
		return match
	})
}
