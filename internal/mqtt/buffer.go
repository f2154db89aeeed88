package mqtt

import (
	"time"

	"github.com/rs/zerolog/log"
)

// outMsg is a serialized message waiting for the broker.
type outMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
	queued   time.Time
}

// outbox holds messages published while the broker is unreachable. When
// full the oldest message is dropped. The caller holds the publisher's lock.
type outbox struct {
	msgs     []outMsg
	capacity int
	dropped  int
	warned   bool // a drop was logged since the last takeAll
}

func newOutbox(capacity int) *outbox {
	if capacity < 1 {
		capacity = 1
	}
	return &outbox{msgs: make([]outMsg, 0, capacity), capacity: capacity}
}

// add queues msg and reports whether an older message was dropped for it.
func (o *outbox) add(msg outMsg) bool {
	if msg.queued.IsZero() {
		msg.queued = time.Now()
	}
	if len(o.msgs) < o.capacity {
		o.msgs = append(o.msgs, msg)
		return false
	}

	lost := o.msgs[0]
	copy(o.msgs, o.msgs[1:])
	o.msgs[len(o.msgs)-1] = msg
	o.dropped++
	if !o.warned {
		log.Warn().
			Int("capacity", o.capacity).
			Str("topic", lost.topic).
			Msg("mqtt outbox full, dropping oldest")
		o.warned = true
	}
	return true
}

// takeAll empties the outbox and returns its messages oldest first.
func (o *outbox) takeAll() []outMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	out := make([]outMsg, len(o.msgs))
	copy(out, o.msgs)
	o.msgs = o.msgs[:0]
	o.warned = false
	return out
}

// requeue puts msgs back ahead of anything queued since they were taken,
// keeping the newest capacity messages overall.
func (o *outbox) requeue(msgs []outMsg) {
	merged := append(append([]outMsg{}, msgs...), o.msgs...)
	if over := len(merged) - o.capacity; over > 0 {
		o.dropped += over
		merged = merged[over:]
	}
	o.msgs = append(o.msgs[:0], merged...)
}

func (o *outbox) size() int {
	return len(o.msgs)
}

func (o *outbox) droppedCount() int {
	return o.dropped
}
