package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newOrderNumber builds an order number of the form YYYYMMDD followed by six
// random characters. Uniqueness is enforced by the database; a collision
// surfaces as a conflict instead of being retried.
func newOrderNumber(now time.Time) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return now.Format("20060102") + string(buf), nil
}
