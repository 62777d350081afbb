package invoices

import "regexp"

var (
	internationalPhone = regexp.MustCompile(`^94\d{9}$`)
	localPhone         = regexp.MustCompile(`^0\d{9}$`)
)

// NormalizePhone validates a destination number and rewrites the
// international form (94 + 9 digits) to the local form (0 + 9 digits).
// An already-local number passes through unchanged.
func NormalizePhone(raw string) (string, error) {
	switch {
	case internationalPhone.MatchString(raw):
		return "0" + raw[2:], nil
	case localPhone.MatchString(raw):
		return raw, nil
	default:
		return "", ErrInvalidPhone
	}
}
