package domain

import (
	"fmt"
	"strings"
)

// Size is a catalog size value. SizeOne means the product has no size.
type Size string

const (
	SizeOne Size = "ONE"
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

var allSizes = []Size{SizeOne, SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

// AllSizes returns the allowed sizes in catalog order.
func AllSizes() []Size {
	out := make([]Size, len(allSizes))
	copy(out, allSizes)
	return out
}

// ParseSize normalizes raw (trim, uppercase) and returns the matching size.
func ParseSize(raw string) (Size, error) {
	normalized := Size(strings.ToUpper(strings.TrimSpace(raw)))
	for _, s := range allSizes {
		if s == normalized {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q, allowed: %s", ErrInvalidSize, raw, allowedSizes())
}

// String returns the canonical representation.
func (s Size) String() string {
	return string(s)
}

// Equal reports whether both sizes have the same canonical value.
func (s Size) Equal(other Size) bool {
	return s == other
}

// IsValid reports whether s is one of the allowed sizes.
func (s Size) IsValid() bool {
	for _, v := range allSizes {
		if v == s {
			return true
		}
	}
	return false
}

func allowedSizes() string {
	names := make([]string, len(allSizes))
	for i, s := range allSizes {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
