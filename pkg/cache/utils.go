package cache

import (
	"fmt"
	"strings"
)

const keySep = ":"

// GenerateKey joins prefix and id with the key separator.
func GenerateKey(prefix string, id string) string {
	return prefix + keySep + id
}

// GenerateKeyWithParams appends each param in %v form, so
// ("candles", "BTCUSDT", 1h, 200) becomes "candles:BTCUSDT:1h:200".
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range params {
		b.WriteString(keySep)
		fmt.Fprint(&b, p)
	}
	return b.String()
}
