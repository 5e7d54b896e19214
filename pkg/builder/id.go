package builder

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/volleyhq/volley/pkg/api"
)

var delimiters = regexp.MustCompile(`[\s_]+`)

// PrefixedID generates a unique ID with a readable prefix, useful when
// fixtures should be recognizable in logs and stored records
func PrefixedID(prefix string) api.ID {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	prefix = delimiters.ReplaceAllString(prefix, "-")
	return api.ID(prefix + "-" + randomHex(6))
}

func randomHex(length int) string {
	bytes := make([]byte, (length+1)/2)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)[:length]
}
