// Package license contains the admin-facing license management service.
package license

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	keyAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	keyGroups    = 5
	keyGroupSize = 5
	keySeparator = "-"
)

// GenerateKey produces a license key in the XXXXX-XXXXX-XXXXX-XXXXX-XXXXX
// format. The key is generated once, handed to the caller, and only its
// lookup hash is ever stored.
func GenerateKey() (string, error) {
	groups := make([]string, keyGroups)
	alphabetLen := big.NewInt(int64(len(keyAlphabet)))

	for g := range groups {
		chars := make([]byte, keyGroupSize)
		for i := range chars {
			num, err := rand.Int(rand.Reader, alphabetLen)
			if err != nil {
				return "", fmt.Errorf("failed to generate license key: %w", err)
			}
			chars[i] = keyAlphabet[num.Int64()]
		}
		groups[g] = string(chars)
	}

	return strings.Join(groups, keySeparator), nil
}
