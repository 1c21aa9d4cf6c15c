package twin

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestRingBufferBasics(t *testing.T) {
	ring := ringBuffer{}
	assert.Assert(t, !ring.hasData())
	assert.Equal(t, ring.size(), 0)

	for _, b := range []byte("\x1b[A") {
		ring.push(b)
	}
	assert.Assert(t, ring.hasData())
	assert.Equal(t, ring.size(), 3)
	assert.Equal(t, ring.front(), byte(0x1b))
	assert.Equal(t, ring.at(2), byte('A'))
	assert.Assert(t, ring.hasPrefix("\x1b["))
	assert.Assert(t, ring.hasPrefix("\x1b[A"))
	assert.Assert(t, !ring.hasPrefix("\x1b[A~"))
	assert.Assert(t, !ring.hasPrefix("\x1bO"))

	ring.pop(2)
	assert.Equal(t, ring.size(), 1)
	assert.Equal(t, ring.front(), byte('A'))

	ring.clear()
	assert.Assert(t, !ring.hasData())
}

func TestRingBufferWrapAround(t *testing.T) {
	ring := ringBuffer{}

	// Move the head close to the end of the backing array
	for i := 0; i < ringBufferSize-2; i++ {
		ring.push('x')
	}
	ring.pop(ringBufferSize - 2)

	for _, b := range []byte("hello") {
		ring.push(b)
	}
	assert.Assert(t, ring.hasPrefix("hello"))
	assert.Equal(t, string(ring.bytes(5)), "hello")
	assert.Equal(t, string(ring.bytes(50)), "hello")
}

func TestRingBufferOverflow(t *testing.T) {
	ring := ringBuffer{}

	for i := 0; i < ringBufferSize+100; i++ {
		ring.push(byte(i % 251))
	}

	assert.Assert(t, ring.isFull())
	assert.Equal(t, ring.size(), ringBufferSize)

	// The excess was dropped, the first bytes are intact
	for i := 0; i < ringBufferSize; i++ {
		assert.Equal(t, ring.at(i), byte(i%251))
	}
}

func TestRingBufferPopTooMuch(t *testing.T) {
	ring := ringBuffer{}
	ring.push('a')

	ring.pop(4)
	assert.Assert(t, !ring.hasData())
}
