/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package rooms

import (
	"strings"
)

const (
	// CodeAlphabet omits 0, O, 1 and I so codes can be read aloud and typed.
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength   = 6
)

// CodeGenerator draws room codes from CodeAlphabet. It does not check for
// collisions; the Registry does.
type CodeGenerator struct {
	src Source
}

func NewCodeGenerator(src Source) *CodeGenerator {
	return &CodeGenerator{src: src}
}

func (g *CodeGenerator) Generate() string {
	var b strings.Builder
	b.Grow(CodeLength)

	for range CodeLength {
		b.WriteByte(CodeAlphabet[g.src.IntN(len(CodeAlphabet))])
	}

	return b.String()
}

// CanonicalCode normalizes user-supplied codes.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code, once canonicalized, has the shape of a room code.
func ValidCode(code string) bool {
	code = CanonicalCode(code)
	if len(code) != CodeLength {
		return false
	}

	for i := 0; i < len(code); i++ {
		if strings.IndexByte(CodeAlphabet, code[i]) < 0 {
			return false
		}
	}

	return true
}
