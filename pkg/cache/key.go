package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// QuoteKey identifies one cached batch: a station and the exact id list
// the batch was requested with.
type QuoteKey struct {
	// StationID is the market/station identifier.
	StationID string

	// ItemIDs is the batch's id list, in request order.
	ItemIDs []int32
}

// String generates a deterministic cache key string. The id list is
// hashed; runs over the same catalog repeat the same batches, so equal
// batches share an entry without the key growing with the batch size.
//
// Format: goonmetrics:quotes:station:count:hash
func (k QuoteKey) String() string {
	var ids strings.Builder
	for _, id := range k.ItemIDs {
		ids.WriteString(strconv.FormatInt(int64(id), 10))
		ids.WriteByte(',')
	}
	sum := sha256.Sum256([]byte(ids.String()))

	return fmt.Sprintf("goonmetrics:quotes:%s:%d:%s",
		k.StationID, len(k.ItemIDs), hex.EncodeToString(sum[:8]))
}
