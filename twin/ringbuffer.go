package twin

// How many not-yet-decoded input bytes we can hold. The longest sequence we
// decode is a mouse report, so this is plenty.
const ringBufferSize = 512

// Fixed capacity FIFO of raw input bytes.
//
// Always check hasData() before front() or at().
type ringBuffer struct {
	buffer [ringBufferSize]byte
	head   int // Index of the first byte
	count  int
}

// Appends a byte. If the buffer is full the byte is dropped.
func (ring *ringBuffer) push(b byte) {
	if ring.isFull() {
		return
	}

	ring.buffer[(ring.head+ring.count)%ringBufferSize] = b
	ring.count++
}

func (ring *ringBuffer) front() byte {
	return ring.buffer[ring.head]
}

func (ring *ringBuffer) at(index int) byte {
	return ring.buffer[(ring.head+index)%ringBufferSize]
}

// Does the buffer start with the given sequence? Nothing is copied.
func (ring *ringBuffer) hasPrefix(sequence string) bool {
	if len(sequence) > ring.count {
		return false
	}

	for i := 0; i < len(sequence); i++ {
		if ring.at(i) != sequence[i] {
			return false
		}
	}

	return true
}

// Removes up to n bytes from the front of the buffer
func (ring *ringBuffer) pop(n int) {
	if n >= ring.count {
		ring.clear()
		return
	}

	ring.head = (ring.head + n) % ringBufferSize
	ring.count -= n
}

func (ring *ringBuffer) clear() {
	ring.head = 0
	ring.count = 0
}

func (ring *ringBuffer) size() int {
	return ring.count
}

func (ring *ringBuffer) hasData() bool {
	return ring.count > 0
}

func (ring *ringBuffer) isFull() bool {
	return ring.count == ringBufferSize
}

// Copies out the first n bytes without consuming them
func (ring *ringBuffer) bytes(n int) []byte {
	if n > ring.count {
		n = ring.count
	}

	result := make([]byte, n)
	for i := range result {
		result[i] = ring.at(i)
	}
	return result
}
