package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	prev := AppVersion
	AppVersion = v
	t.Cleanup(func() { AppVersion = prev })
}

func TestCurrent(t *testing.T) {
	withVersion(t, "v1.4.0")
	assert.Equal(t, "1.4.0", Current())

	withVersion(t, "dev")
	assert.Equal(t, "dev", Current())
}
