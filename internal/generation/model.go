package generation

import "strings"

// NormalizeModel strips decorative marker glyphs (⚡ and friends) from a model
// key so the service receives the bare identifier.
func NormalizeModel(id string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if isMarkerGlyph(r) {
			return -1
		}
		return r
	}, id))
}

func isMarkerGlyph(r rune) bool {
	switch {
	case r >= 0x231A && r <= 0x23FF:
	case r >= 0x2600 && r <= 0x27BF:
	case r >= 0x2B00 && r <= 0x2BFF:
	case r >= 0x1F000 && r <= 0x1FAFF:
	case r == 0xFE0F, r == 0x200D:
	default:
		return false
	}
	return true
}
