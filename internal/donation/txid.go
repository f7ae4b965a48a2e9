package donation

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// NewTransactionID produces a reference like TXN_1700000000000_A3F29C81,
// unique with overwhelming probability across concurrent callers. True
// uniqueness is enforced by the ledger's unique constraint; on a collision
// the insert fails and the caller retries with a fresh id.
func NewTransactionID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to the
		// clock so a donation attempt is not lost.
		return strings.ToUpper(fmt.Sprintf("TXN_%d_%X", time.Now().UnixMilli(), time.Now().UnixNano()%0xFFFFFF))
	}
	return strings.ToUpper(fmt.Sprintf("TXN_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(buf)))
}
