package ids

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceID(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	id := ReferenceID(now)

	parts := strings.Split(id, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "LIC", parts[0])
	assert.Equal(t, strconv.FormatInt(now.UnixMilli(), 10), parts[1])
	assert.Regexp(t, `^[0-9A-Z]{6}$`, parts[2])
}

func TestDeviceFingerprint(t *testing.T) {
	fp := DeviceFingerprint()

	assert.Regexp(t, `^device-web-[0-9a-z]{9}$`, fp)
	assert.NotEqual(t, fp, DeviceFingerprint())
}
