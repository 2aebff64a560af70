package secret

// mask replaces the hidden portion of a redacted secret. Fixed width so the
// display form leaks nothing about the secret's length.
const mask = "***"

// DefaultVisibleSuffix is the suffix length used at API and log boundaries.
const DefaultVisibleSuffix = 3

// Redact returns a display form of secret that discloses only its last n
// characters: mask + suffix. Secrets of n characters or fewer are fully
// masked (showing the whole value would disclose the entire secret).
// Total function; safe for any input including empty strings.
func Redact(secret string, n int) string {
	runes := []rune(secret)
	if n <= 0 || len(runes) <= n {
		return mask
	}
	return mask + string(runes[len(runes)-n:])
}
