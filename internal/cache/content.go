package cache

import (
	"iter"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// roomContent holds the threads of one room, ordered by the creation time
// of their first message. Messages in a thread stay grouped after its root.
type roomContent struct {
	threads []*msgThread
}

// messages yields all messages in display order: threads in chronological
// order, messages chronological within each thread.
func (c *roomContent) messages() iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for _, t := range c.threads {
			for _, m := range t.messages {
				if !yield(m) {
					return
				}
			}
		}
	}
}

// add upserts a message, respecting the thread order. Adding a message with
// an existing id updates it in place and never duplicates.
func (c *roomContent) add(msg Message) error {
	if msg.ID == "" || msg.Created.IsZero() {
		return errors.Wrap(ErrMalformedMessage, "missing id or creation time")
	}

	// A message with a known id in any thread is an update.
	for _, t := range c.threads {
		if t.update(msg) {
			log.Debug().Str("message", msg.ID).Msg("updated existing message")
			return nil
		}
	}

	threadID := msg.ParentID
	if threadID == "" {
		threadID = msg.ID
	}
	for i, t := range c.threads {
		if t.id == threadID {
			before := t.firstCreated()
			if err := t.add(msg); err != nil {
				return err
			}
			// A reply can arrive before its root; when the root joins,
			// the thread's place among the others is stale.
			if !t.firstCreated().Equal(before) {
				c.threads = append(c.threads[:i], c.threads[i+1:]...)
				c.insertSorted(t)
			}
			return nil
		}
	}

	// No thread with that id: create one and place it chronologically by
	// the creation time of its first message.
	t := &msgThread{}
	if err := t.add(msg); err != nil {
		return err
	}
	c.insertSorted(t)
	return nil
}

// insertSorted places a thread by the creation time of its first message,
// after any thread with an equal timestamp.
func (c *roomContent) insertSorted(t *msgThread) {
	pos := sort.Search(len(c.threads), func(i int) bool {
		return c.threads[i].firstCreated().After(t.firstCreated())
	})
	c.threads = append(c.threads, nil)
	copy(c.threads[pos+1:], c.threads[pos:])
	c.threads[pos] = t
}

// delete removes the message with the given id from whichever thread holds it.
func (c *roomContent) delete(msgID string) error {
	for _, t := range c.threads {
		if t.delete(msgID) {
			return nil
		}
	}
	return errors.Wrapf(ErrMessageNotFound, "message %s", msgID)
}

// nth returns the message at the given index in display order.
func (c *roomContent) nth(index int) (Message, error) {
	i := 0
	for m := range c.messages() {
		if i == index {
			return m, nil
		}
		i++
	}
	return Message{}, errors.Wrapf(ErrMessageNotFound, "index %d", index)
}

// indexOf returns the display-order index of the message, or -1.
func (c *roomContent) indexOf(msgID string) int {
	i := 0
	for m := range c.messages() {
		if m.ID == msgID {
			return i
		}
		i++
	}
	return -1
}

func (c *roomContent) len() int {
	n := 0
	for _, t := range c.threads {
		n += t.len()
	}
	return n
}

func (c *roomContent) isEmpty() bool {
	return c.len() == 0
}
