package utils

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithPadding(t *testing.T) {
	type scenario struct {
		str      string
		padding  int
		expected string
	}

	scenarios := []scenario{
		{"hello", 10, "hello     "},
		{"hello world !", 1, "hello world !"},
	}

	for _, s := range scenarios {
		assert.EqualValues(t, s.expected, WithPadding(s.str, s.padding))
	}
}

func TestMax(t *testing.T) {
	assert.Equal(t, 5, Max(5, 3))
	assert.Equal(t, 5, Max(3, 5))
}

func TestMin(t *testing.T) {
	assert.Equal(t, 3, Min(5, 3))
	assert.Equal(t, 3, Min(3, 5))
}

func TestCloseManyNoErrors(t *testing.T) {
	assert.NoError(t, CloseMany(nil))
}

func TestCloseManyCollectsErrors(t *testing.T) {
	err := CloseMany([]io.Closer{
		closerFunc(func() error { return errors.New("boom1") }),
		closerFunc(func() error { return nil }),
		closerFunc(func() error { return errors.New("boom2") }),
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom1")
	assert.Contains(t, err.Error(), "boom2")
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
