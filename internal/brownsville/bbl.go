package brownsville

import (
	"fmt"
	"strconv"
)

// FormatBBL builds the 10-digit borough-block-lot parcel key: one borough
// digit, the block zero-padded to five digits, the lot zero-padded to four.
func FormatBBL(boroughID, block, lot int64) int64 {
	s := fmt.Sprintf("%d%05d%04d", boroughID, block, lot)
	bbl, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return bbl
}
