package app

import "fmt"

// Action is something the user can trigger from the keyboard. The set of
// available actions depends on the active pane.
type Action int

const (
	ActionQuit Action = iota
	ActionEditMessage
	ActionSendMessage
	ActionToggleLogs
	ActionToggleHelp
	ActionNextPane
	ActionMarkRead
	ActionNextRoom
	ActionPrevRoom
	ActionNextFilter
	ActionPrevFilter
	ActionNextMessage
	ActionPrevMessage
	ActionDeselectMessage
	ActionRespondToSelected
	ActionEditSelected
	ActionDeleteMessage
	ActionCopyMessage
)

// Keys returns the key(s) bound to the action, in bubbletea key notation.
func (a Action) Keys() []string {
	switch a {
	case ActionQuit:
		return []string{"q", "ctrl+c"}
	case ActionEditMessage:
		return []string{"c"}
	case ActionSendMessage:
		return nil // reachable from compose mode only
	case ActionToggleLogs:
		return []string{"l"}
	case ActionToggleHelp:
		return []string{"h"}
	case ActionNextPane:
		return []string{"tab"}
	case ActionMarkRead:
		return []string{"r"}
	case ActionNextRoom:
		return []string{"down", "j"}
	case ActionPrevRoom:
		return []string{"up", "k"}
	case ActionNextFilter:
		return []string{"right"}
	case ActionPrevFilter:
		return []string{"left"}
	case ActionNextMessage:
		return []string{"down", "j"}
	case ActionPrevMessage:
		return []string{"up", "k"}
	case ActionDeselectMessage:
		return []string{"esc"}
	case ActionRespondToSelected:
		return []string{"enter"}
	case ActionEditSelected:
		return []string{"e"}
	case ActionDeleteMessage:
		return []string{"d"}
	case ActionCopyMessage:
		return []string{"y"}
	default:
		return nil
	}
}

func (a Action) String() string {
	switch a {
	case ActionQuit:
		return "Quit"
	case ActionEditMessage:
		return "Compose message"
	case ActionSendMessage:
		return "Send message"
	case ActionToggleLogs:
		return "Toggle logs"
	case ActionToggleHelp:
		return "Toggle help"
	case ActionNextPane:
		return "Next pane"
	case ActionMarkRead:
		return "Mark read"
	case ActionNextRoom:
		return "Next room"
	case ActionPrevRoom:
		return "Previous room"
	case ActionNextFilter:
		return "Next room filter"
	case ActionPrevFilter:
		return "Previous room filter"
	case ActionNextMessage:
		return "Next message"
	case ActionPrevMessage:
		return "Previous message"
	case ActionDeselectMessage:
		return "Deselect message"
	case ActionRespondToSelected:
		return "Respond to message"
	case ActionEditSelected:
		return "Edit message"
	case ActionDeleteMessage:
		return "Delete message"
	case ActionCopyMessage:
		return "Copy message"
	default:
		return "Unknown"
	}
}

// Actions is the closed set of actions available in one context, with a
// key lookup table.
type Actions struct {
	list  []Action
	byKey map[string]Action
}

// NewActions builds a contextual action set. A key bound to two actions in
// the same set is a programming error and panics at construction time.
func NewActions(actions ...Action) Actions {
	byKey := make(map[string]Action)
	for _, action := range actions {
		for _, key := range action.Keys() {
			if other, ok := byKey[key]; ok {
				panic(fmt.Sprintf("key %q bound to both %s and %s", key, other, action))
			}
			byKey[key] = action
		}
	}
	return Actions{list: actions, byKey: byKey}
}

// Find returns the action bound to the key, if any.
func (a Actions) Find(key string) (Action, bool) {
	action, ok := a.byKey[key]
	return action, ok
}

// List returns the actions in declaration order, for the help pane.
func (a Actions) List() []Action {
	return a.list
}
