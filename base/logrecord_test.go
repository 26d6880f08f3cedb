package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueConstructors(t *testing.T) {
	assert.False(t, Absent.Present())
	assert.Empty(t, Absent.Text())

	assert.True(t, String("").Present(), "explicit empty string is present")
	assert.False(t, OptString("").Present(), "optional empty string is absent")
	assert.True(t, OptString("x").Present())

	assert.Equal(t, "42", Int(42).Text())
	assert.Equal(t, "-7", Int64(-7).Text())
}

func TestValueAny(t *testing.T) {
	assert.False(t, Any(nil).Present())
	assert.Equal(t, "3.5", Any(3.5).Text())
	assert.Equal(t, "true", Any(true).Text())
	assert.Equal(t, "text", Any("text").Text())
}

func TestFailureKindNames(t *testing.T) {
	assert.Equal(t, "format", FormatFailure.String())
	assert.Equal(t, "open", OpenFailure.String())
	assert.Equal(t, "write", WriteFailure.String())
	assert.Equal(t, "flush", FlushFailure.String())
	assert.Equal(t, "close", CloseFailure.String())
}
