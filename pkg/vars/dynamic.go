package vars

import (
	cryptorand "crypto/rand"
	"encoding/hex"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/volleyhq/volley/pkg/api"
)

// evalDynamic scans generator declarations for a name match and produces a
// value. First declaration wins when names repeat
func evalDynamic(defs []*api.DynamicVar, name string) (string, bool) {
	for _, d := range defs {
		if d.Name == name {
			return generate(d), true
		}
	}
	return "", false
}

func generate(d *api.DynamicVar) string {
	switch d.Kind {
	case api.DynamicUUID:
		return uuid.NewString()
	case api.DynamicTimestamp:
		format := d.Format
		if format == "" {
			format = time.RFC3339
		}
		return time.Now().Format(format)
	case api.DynamicUnixMilli:
		return strconv.FormatInt(time.Now().UnixMilli(), 10)
	case api.DynamicRandomInt:
		return strconv.FormatInt(randomInt(d.Min, d.Max), 10)
	case api.DynamicRandomHex:
		return randomHex(d.Length)
	}
	return ""
}

func randomInt(lo, hi int64) int64 {
	if lo >= hi {
		return lo
	}
	return lo + rand.Int64N(hi-lo+1)
}

func randomHex(length int) string {
	if length <= 0 {
		length = api.DefaultHexLength
	}
	buf := make([]byte, (length+1)/2)
	if _, err := cryptorand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)[:length]
}
