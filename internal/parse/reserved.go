package parse

// reservedWords is the set from spec §4.2: recognized only when a word
// occupies a command-start position (the first word of what would
// otherwise be a simple command, or a position the grammar of an
// enclosing construct demands).
var reservedWords = map[string]bool{
	"!": true, "{": true, "}": true, "case": true, "do": true,
	"done": true, "elif": true, "else": true, "esac": true, "fi": true,
	"for": true, "if": true, "in": true, "then": true, "until": true,
	"while": true,
}

// isReserved reports whether text is reserved-word text. Callers must
// also check the token was unquoted before treating it as reserved.
func isReserved(text string) bool {
	return reservedWords[text]
}

// IsReservedWord is isReserved, exported for the `command -v`/`-V`
// built-in's resolution-order check (spec §4.6).
func IsReservedWord(text string) bool {
	return reservedWords[text]
}
