package pkg

import (
	"crypto/rand"
	"encoding/base64"
	"math"
	"os"
	"regexp"
	"strings"
	"unsafe"
)

var slugCleanRegex = regexp.MustCompile(`[^a-z0-9]+`)

// BytesToString converts bytes slice to a string without extra allocation
func BytesToString(buf []byte) string {
	return *(*string)(unsafe.Pointer(&buf))
}

// GenerateRandomString returns a URL-safe, base64 encoded
// securely generated random string.
func GenerateRandomString(s int) (string, error) {
	b := make([]byte, s)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:s], nil
}

// PathExists returns whether the given file or directory exists
func PathExists(path string, isDir bool) (bool, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if (isDir && stat.IsDir()) || (!isDir && !stat.IsDir()) {
		return true, nil
	}
	return false, err
}

// Slugify lower-cases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	s = slugCleanRegex.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// Truncate2 cuts f down to 2 decimals without rounding. Float noise below the 6th decimal
// is rounded away first, so 80.3-80.0 gives 0.3 and not 0.29.
func Truncate2(f float64) float64 {
	return math.Trunc(math.Round(f*1e6)/1e4) / 100
}
