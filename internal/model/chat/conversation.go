package chat

import "strings"

// PairKey normalizes the two participant ids into an order-insensitive
// conversation key, so both directions of a conversation share one index.
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}
