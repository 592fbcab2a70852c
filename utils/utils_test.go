package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"object-mapper/utils"
)

func TestUnpack2(t *testing.T) {
	first, second := utils.Unpack2(strings.SplitN("object-mapper/store.Order", ".", 2))
	assert.Equal(t, "object-mapper/store", first)
	assert.Equal(t, "Order", second)

	first, second = utils.Unpack2([]string{"only"})
	assert.Equal(t, "only", first)
	assert.Empty(t, second)
}

func TestIsInRange(t *testing.T) {
	assert.True(t, utils.IsInRange(0, 1, 1))
	assert.False(t, utils.IsInRange(0, 2, 1))
	assert.True(t, utils.IsInRange(-1.5, 0, 1.5))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", utils.Coalesce("", "b", "c"))
	assert.Equal(t, 0, utils.Coalesce[int]())
	assert.Equal(t, 7, *utils.Ptr(7))
}
