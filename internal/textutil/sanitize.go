package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxIdentityLength is the longest name accepted by the providers.
	MaxIdentityLength = 100
	// FallbackIdentity is used when a folder name has no usable characters.
	FallbackIdentity = "project"
)

// DeriveIdentity converts a folder name into a lowercase, hyphen-separated
// identity. "My Cool App" becomes "my-cool-app"; "Café Déjà" becomes
// "cafe-deja". The result is never empty.
func DeriveIdentity(folderName string) string {
	folded := foldASCII(strings.TrimSpace(folderName))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
			r += 'a' - 'A'
		default:
			// Everything else, dots and underscores included, separates tokens.
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}

	out := b.String()
	if len(out) > MaxIdentityLength {
		out = strings.TrimRight(out[:MaxIdentityLength], "-")
	}
	if out == "" {
		return FallbackIdentity
	}
	return out
}

// WithSuffix appends "-suffix" to identity, trimming identity so the result
// stays within MaxIdentityLength.
func WithSuffix(identity, suffix string) string {
	identity = strings.TrimSpace(identity)
	suffix = strings.Trim(strings.TrimSpace(suffix), "-")
	if suffix == "" {
		return identity
	}
	if identity == "" {
		identity = FallbackIdentity
	}
	room := MaxIdentityLength - len(suffix) - 1
	if room < 1 {
		room = 1
	}
	if len(identity) > room {
		identity = strings.TrimRight(identity[:room], "-")
	}
	return identity + "-" + suffix
}

func foldASCII(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}
