package shroud

import (
	"fmt"
	"math"
)

// Names of the built-in transforms. These are the identifiers persisted in
// registry state and matched by the legacy encoding.
const (
	NameSha256Hash = "Sha256Hash"
	NameSha512Hash = "Sha512Hash"
	NameArgon2Hash = "Argon2Hash"
	NameBcryptHash = "BcryptHash"

	NameMaskEmail = "MaskEmail"
	NameMaskPhone = "MaskPhone"
	NameMaskIP    = "MaskIP"
	NameMaskName  = "MaskName"
	NameMaskUUID  = "MaskUUID"

	NameAESEncrypt = "AESEncrypt"
	NameRSAEncrypt = "RSAEncrypt"

	NameRoundThousands  = "RoundThousands"
	NameRoundHundreds   = "RoundHundreds"
	NameRoundTens       = "RoundTens"
	NameRoundOnes       = "RoundOnes"
	NameRoundTenths     = "RoundTenths"
	NameRoundHundredths = "RoundHundredths"

	NameRoundToNearestCity = "RoundToNearestCity"
	NameCoordinateOffset   = "CoordinateOffset"
	NameTimeOffset         = "TimeOffset"
)

// unsupported builds the error transforms return for value types they do
// not handle.
func unsupported(transform string, v any) error {
	return fmt.Errorf("%w: %s cannot handle %T", ErrUnsupportedValue, transform, v)
}

// textOf extracts text from string-like values.
func textOf(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case fmt.Stringer:
		return t.String(), true
	}
	return "", false
}

// floatOf converts numeric values to float64, returning a function that
// converts a result back to the original type.
func floatOf(v any) (float64, func(float64) any, bool) {
	switch n := v.(type) {
	case float64:
		return n, func(f float64) any { return f }, true
	case float32:
		return float64(n), func(f float64) any { return float32(f) }, true
	case int:
		return float64(n), func(f float64) any { return int(math.Round(f)) }, true
	case int32:
		return float64(n), func(f float64) any { return int32(math.Round(f)) }, true
	case int64:
		return float64(n), func(f float64) any { return int64(math.Round(f)) }, true
	}
	return 0, nil, false
}
