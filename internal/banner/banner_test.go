package banner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetString(t *testing.T) {
	s := GetString()

	assert.Contains(t, s, "|___/")
	assert.Contains(t, s, "how many players")
}
