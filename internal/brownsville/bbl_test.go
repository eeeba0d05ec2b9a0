package brownsville

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBBL(t *testing.T) {
	assert.Equal(t, int64(3000070042), FormatBBL(3, 7, 42))
	assert.Equal(t, int64(3015290001), FormatBBL(3, 1529, 1))
	assert.Equal(t, int64(1999999999), FormatBBL(1, 99999, 9999))
}
