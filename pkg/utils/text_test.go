package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateText_ShortStringUnchanged(t *testing.T) {
	assert.Equal(t, "hello", TruncateText("hello", 10))
}

func TestTruncateText_CutsWithEllipsis(t *testing.T) {
	assert.Equal(t, "hello...", TruncateText("hello world", 5))
}

func TestTruncateText_RuneSafe(t *testing.T) {
	got := TruncateText("héllo wörld", 5)
	assert.Equal(t, "héllo...", got)
}

func TestTruncateText_ZeroMax(t *testing.T) {
	assert.Equal(t, "", TruncateText("hello", 0))
}
