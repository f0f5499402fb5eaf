package cache

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

// msgThread is a list of messages ordered by creation time, where every
// message after the first has the first one as parent. The thread id is the
// id of the first message.
type msgThread struct {
	id       string
	messages []Message
}

// update replaces an existing message with the same id in place and reports
// whether it did. The stored parent id and creation time are preserved:
// update events from the service omit or falsify the parent, and a changed
// creation time would invalidate the message's sort position.
func (t *msgThread) update(msg Message) bool {
	for i := range t.messages {
		if t.messages[i].ID == msg.ID {
			msg.ParentID = t.messages[i].ParentID
			msg.Created = t.messages[i].Created
			t.messages[i] = msg
			return true
		}
	}
	return false
}

// add inserts a new message keeping the thread ordered by creation time.
// Messages with equal timestamps keep their insertion order.
func (t *msgThread) add(msg Message) error {
	if err := t.reconcileID(msg); err != nil {
		return err
	}
	pos := sort.Search(len(t.messages), func(i int) bool {
		return t.messages[i].Created.After(msg.Created)
	})
	t.messages = append(t.messages, Message{})
	copy(t.messages[pos+1:], t.messages[pos:])
	t.messages[pos] = msg
	return nil
}

// reconcileID validates the message against the thread id, setting the id
// from the first message if the thread does not have one yet. A message with
// a parent must point at this thread; a message without a parent must be the
// thread root itself.
func (t *msgThread) reconcileID(msg Message) error {
	if t.id == "" {
		if msg.ParentID != "" {
			t.id = msg.ParentID
		} else {
			t.id = msg.ID
		}
		return nil
	}
	if msg.ParentID != "" && msg.ParentID != t.id {
		return errors.Wrapf(ErrThreadMismatch, "thread %s, message parent %s", t.id, msg.ParentID)
	}
	if msg.ParentID == "" && msg.ID != t.id {
		return errors.Wrapf(ErrThreadMismatch, "thread %s, message id %s", t.id, msg.ID)
	}
	return nil
}

// firstCreated returns the creation time of the first message in the thread.
func (t *msgThread) firstCreated() time.Time {
	if len(t.messages) == 0 {
		return time.Time{}
	}
	return t.messages[0].Created
}

// delete removes the message with the given id and reports whether it was found.
func (t *msgThread) delete(msgID string) bool {
	for i := range t.messages {
		if t.messages[i].ID == msgID {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
			return true
		}
	}
	return false
}

func (t *msgThread) len() int {
	return len(t.messages)
}
