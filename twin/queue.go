package twin

// How many decoded keys may wait for delivery. When this many are queued we
// stop reading input until some have been delivered.
const maxQueueSize = 1024

// FIFO of decoded key codes
type keyQueue struct {
	keys []KeyCode
}

// Appends a key. If the queue is full the key is dropped.
func (queue *keyQueue) push(key KeyCode) {
	if queue.isFull() {
		return
	}
	queue.keys = append(queue.keys, key)
}

// Removes and returns the first key. The queue must not be empty.
func (queue *keyQueue) pop() KeyCode {
	key := queue.keys[0]
	queue.keys = queue.keys[1:]
	if len(queue.keys) == 0 {
		// Let go of the consumed prefix
		queue.keys = nil
	}
	return key
}

func (queue *keyQueue) size() int {
	return len(queue.keys)
}

func (queue *keyQueue) isEmpty() bool {
	return len(queue.keys) == 0
}

func (queue *keyQueue) isFull() bool {
	return len(queue.keys) >= maxQueueSize
}
