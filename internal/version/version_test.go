package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	orig := Tag
	defer func() { Tag = orig }()

	Tag = ""
	assert.Equal(t, "dev", String())
	Tag = "v1.0.0"
	assert.Equal(t, "v1.0.0", String())
}
