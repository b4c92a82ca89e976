package shroud

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// maskTransform applies a pure string masking function.
type maskTransform struct {
	name string
	mask func(string) string
}

func (t *maskTransform) Name() string { return t.name }

func (t *maskTransform) Apply(_ context.Context, _ *Session, value any) (any, error) {
	text, ok := textOf(value)
	if !ok {
		return nil, unsupported(t.name, value)
	}
	return t.mask(text), nil
}

// MaskEmail keeps the first character of the local part and the domain:
// alice@example.com -> a***@example.com
func MaskEmail() Transform {
	return &maskTransform{name: NameMaskEmail, mask: maskEmail}
}

// MaskPhone keeps the last four digits: (555) 123-4567 -> (***) ***-4567
func MaskPhone() Transform {
	return &maskTransform{name: NameMaskPhone, mask: maskPhone}
}

// MaskIP keeps the network part of an address: the first two octets of
// IPv4, the /64 prefix of IPv6.
func MaskIP() Transform {
	return &maskTransform{name: NameMaskIP, mask: maskIP}
}

// MaskName keeps the first letter of each word: John Smith -> J*** S****
func MaskName() Transform {
	return &maskTransform{name: NameMaskName, mask: maskName}
}

// MaskUUID keeps the first group of a UUID, e.g. a device identifier:
// 550e8400-e29b-41d4-a716-446655440000 -> 550e8400-****-****-****-************
func MaskUUID() Transform {
	return &maskTransform{name: NameMaskUUID, mask: maskUUID}
}

func maskEmail(value string) string {
	at := strings.LastIndex(value, "@")
	if at < 1 {
		return strings.Repeat("*", utf8.RuneCountInString(value))
	}
	first, _ := utf8.DecodeRuneInString(value)
	return string(first) + "***" + value[at:]
}

func maskPhone(value string) string {
	digits := extractDigits(value)
	if len(digits) < 4 {
		return strings.Repeat("*", len(value))
	}

	last4 := digits[len(digits)-4:]
	switch {
	case strings.HasPrefix(value, "(") && len(digits) >= 10:
		return "(***) ***-" + last4
	case len(digits) >= 10:
		return "***-***-" + last4
	default:
		return "***-" + last4
	}
}

func maskIP(value string) string {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return strings.Repeat("*", len(value))
	}

	if addr.Is4() || addr.Is4In6() {
		o := addr.Unmap().As4()
		return fmt.Sprintf("%d.%d.xxx.xxx", o[0], o[1])
	}

	// Keep the 64-bit network prefix, mask the interface identifier.
	return addr.StringExpanded()[:20] + "xxxx:xxxx:xxxx:xxxx"
}

func maskName(value string) string {
	words := strings.Fields(value)
	for i, word := range words {
		runes := []rune(word)
		words[i] = string(runes[0]) + strings.Repeat("*", len(runes)-1)
	}
	return strings.Join(words, " ")
}

func maskUUID(value string) string {
	id, err := uuid.Parse(value)
	if err != nil {
		return strings.Repeat("*", len(value))
	}
	return id.String()[:8] + "-****-****-****-************"
}

// extractDigits returns only the digit characters from a string.
func extractDigits(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}
