package api

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kjeldgaard/teamterm/internal/cache"
)

// Wire representations use RFC 3339 timestamps. They are decoded once here
// and never restringified for comparison.

type wireMessage struct {
	ID       string `json:"id"`
	RoomID   string `json:"roomId"`
	ParentID string `json:"parentId,omitempty"`
	PersonID string `json:"personId,omitempty"`
	Email    string `json:"personEmail,omitempty"`
	Text     string `json:"text,omitempty"`
	Markdown string `json:"markdown,omitempty"`
	Created  string `json:"created"`
	Updated  string `json:"updated,omitempty"`
}

type wireRoom struct {
	ID           string `json:"id"`
	Title        string `json:"title,omitempty"`
	Type         string `json:"type"`
	TeamID       string `json:"teamId,omitempty"`
	IsLocked     bool   `json:"isLocked,omitempty"`
	LastActivity string `json:"lastActivity"`
}

type wirePerson struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Emails      []string `json:"emails"`
}

type wireTeam struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Created string `json:"created"`
}

func parseTimestamp(s string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse timestamp %q", s)
	}
	return ts.UTC(), nil
}

func (w wireMessage) toMessage() (cache.Message, error) {
	created, err := parseTimestamp(w.Created)
	if err != nil {
		return cache.Message{}, err
	}
	msg := cache.Message{
		ID:       w.ID,
		RoomID:   w.RoomID,
		ParentID: w.ParentID,
		PersonID: w.PersonID,
		Email:    w.Email,
		Text:     w.Text,
		Markdown: w.Markdown,
		Created:  created,
	}
	if w.Updated != "" {
		updated, err := parseTimestamp(w.Updated)
		if err != nil {
			return cache.Message{}, err
		}
		msg.Updated = updated
	}
	return msg, nil
}

func (w wireRoom) toRoom() (cache.Room, error) {
	lastActivity, err := parseTimestamp(w.LastActivity)
	if err != nil {
		return cache.Room{}, err
	}
	return cache.Room{
		ID:           w.ID,
		Title:        w.Title,
		Type:         w.Type,
		TeamID:       w.TeamID,
		IsLocked:     w.IsLocked,
		LastActivity: lastActivity,
	}, nil
}

func (w wirePerson) toPerson() cache.Person {
	p := cache.Person{ID: w.ID, DisplayName: w.DisplayName}
	if len(w.Emails) > 0 {
		p.Email = w.Emails[0]
	}
	return p
}

func (w wireTeam) toTeam() (cache.Team, error) {
	created, err := parseTimestamp(w.Created)
	if err != nil {
		return cache.Team{}, err
	}
	return cache.Team{ID: w.ID, Name: w.Name, Created: created}, nil
}

// convertMessages converts a wire batch, dropping records with unparsable
// timestamps. Order is preserved.
func convertMessages(items []wireMessage) []cache.Message {
	msgs := make([]cache.Message, 0, len(items))
	for _, item := range items {
		msg, err := item.toMessage()
		if err != nil {
			log.Warn().Err(err).Str("message", item.ID).Msg("dropping message with bad timestamp")
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// convertRooms converts a wire batch, dropping records with unparsable
// timestamps.
func convertRooms(items []wireRoom) []cache.Room {
	rooms := make([]cache.Room, 0, len(items))
	for _, item := range items {
		room, err := item.toRoom()
		if err != nil {
			log.Warn().Err(err).Str("room", item.ID).Msg("dropping room with bad timestamp")
			continue
		}
		rooms = append(rooms, room)
	}
	return rooms
}
