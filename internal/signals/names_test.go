package signals

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameOfStandard(t *testing.T) {
	name, ok := NameOf(int(syscall.SIGINT))
	assert.True(t, ok)
	assert.Equal(t, "INT", name)
}

func TestNumberOfAcceptsPrefixAndCase(t *testing.T) {
	for _, spec := range []string{"INT", "SIGINT", "int", "sigint"} {
		num, ok := NumberOf(spec)
		assert.True(t, ok, spec)
		assert.Equal(t, int(syscall.SIGINT), num)
	}
}

func TestNumberOfNumericString(t *testing.T) {
	num, ok := NumberOf("9")
	assert.True(t, ok)
	assert.Equal(t, int(syscall.SIGKILL), num)

	_, ok = NumberOf("0")
	assert.False(t, ok)

	_, ok = NumberOf("99")
	assert.False(t, ok)
}

func TestRealTimeSignalRoundTrip(t *testing.T) {
	name, ok := NameOf(rtMin)
	assert.True(t, ok)
	assert.Equal(t, "RTMIN", name)

	name, ok = NameOf(rtMin + 3)
	assert.True(t, ok)
	assert.Equal(t, "RTMIN+3", name)

	name, ok = NameOf(rtMax)
	assert.True(t, ok)
	assert.Equal(t, "RTMAX", name)

	name, ok = NameOf(rtMax - 2)
	assert.True(t, ok)
	assert.Equal(t, "RTMAX-2", name)

	num, ok := NumberOf("RTMIN+3")
	assert.True(t, ok)
	assert.Equal(t, rtMin+3, num)

	num, ok = NumberOf("rtmax-2")
	assert.True(t, ok)
	assert.Equal(t, rtMax-2, num)
}

func TestListAllIsSortedAndCovered(t *testing.T) {
	all := ListAll()
	assert.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1], all[i])
	}
	assert.Contains(t, all, int(syscall.SIGHUP))
	assert.Contains(t, all, rtMin)
	assert.Contains(t, all, rtMax)
}
