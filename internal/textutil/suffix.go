package textutil

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// NumericSuffix returns a random four-digit suffix used to retry a name that
// collided with an unrelated resource.
func NumericSuffix() string {
	return fmt.Sprintf("%04d", rand.IntN(10000))
}

// Disambiguator returns a short random token for provisioning hosting sites
// whose names must be globally unique.
func Disambiguator() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
