package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

var (
	slugPattern  = regexp.MustCompile(`[^a-z0-9]+`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)
)

// SlugifyName lowercases a display name and collapses everything that is
// not a letter or digit into single dashes.
func SlugifyName(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 20 {
		slug = slug[:20]
		slug = strings.Trim(slug, "-")
	}
	if slug == "" {
		slug = "partner"
	}
	return slug
}

// GeneratePartnerID builds a partner code from the slugified name, the
// current unix timestamp and a random suffix. Callers re-roll on the rare
// collision against an existing code.
func GeneratePartnerID(name string) string {
	max := big.NewInt(999999)
	n, _ := rand.Int(rand.Reader, max)
	return fmt.Sprintf("%s-%d%06d", SlugifyName(name), time.Now().Unix(), n.Int64())
}

// IsValidEmail validates email format
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPhone validates phone format (10-15 digits, optional leading +)
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(strings.ReplaceAll(phone, " ", ""))
}
