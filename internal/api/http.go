package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kjeldgaard/teamterm/internal/cache"
)

// DefaultBaseURL is the public REST endpoint of the service.
const DefaultBaseURL = "https://api.teams.example.com/v1"

const defaultPageSize = 100

// restClient implements Client against the service REST API.
type restClient struct {
	baseURL string
	token   string
	http    *http.Client

	// deviceURL is the registration endpoint for the event websocket.
	deviceURL string
}

// NewClient returns a Client authenticated with the given access token.
func NewClient(baseURL, token string) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &restClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *restClient) get(ctx context.Context, path string, query url.Values, out any) (http.Header, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, u, nil, out)
}

func (c *restClient) do(ctx context.Context, method, u string, body any, out any) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, u)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, errors.Wrapf(ErrAuth, "%s %s: status %d", method, u, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("%s %s: status %d: %s", method, u, resp.StatusCode, snippet)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, errors.Wrapf(err, "decode %s %s", method, u)
		}
	}
	return resp.Header, nil
}

// ErrAuth marks a permission failure; retrying without a new token is useless.
var ErrAuth = errors.New("authentication failed")

func (c *restClient) Me(ctx context.Context) (cache.Person, error) {
	var w wirePerson
	if _, err := c.get(ctx, "/people/me", nil, &w); err != nil {
		return cache.Person{}, err
	}
	return w.toPerson(), nil
}

func (c *restClient) ListRooms(ctx context.Context) ([]cache.Room, error) {
	query := url.Values{"max": {strconv.Itoa(defaultPageSize)}, "sortBy": {"lastactivity"}}
	u := c.baseURL + "/rooms?" + query.Encode()

	var rooms []cache.Room
	for page := 0; u != ""; page++ {
		var body struct {
			Items []wireRoom `json:"items"`
		}
		header, err := c.do(ctx, http.MethodGet, u, nil, &body)
		if err != nil {
			return rooms, err
		}
		rooms = append(rooms, convertRooms(body.Items)...)
		u = nextPageURL(header)
		if page > 100 {
			log.Warn().Msg("giving up room pagination after 100 pages")
			break
		}
	}
	return rooms, nil
}

var nextLinkRe = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="next"`)

// nextPageURL extracts the next-page link from an RFC 5988 Link header.
func nextPageURL(header http.Header) string {
	for _, link := range header.Values("Link") {
		if m := nextLinkRe.FindStringSubmatch(link); m != nil {
			return m[1]
		}
	}
	return ""
}

func (c *restClient) GetRoom(ctx context.Context, id string) (cache.Room, error) {
	var w wireRoom
	if _, err := c.get(ctx, "/rooms/"+url.PathEscape(id), nil, &w); err != nil {
		return cache.Room{}, err
	}
	return w.toRoom()
}

func (c *restClient) GetPerson(ctx context.Context, id string) (cache.Person, error) {
	var w wirePerson
	if _, err := c.get(ctx, "/people/"+url.PathEscape(id), nil, &w); err != nil {
		return cache.Person{}, err
	}
	return w.toPerson(), nil
}

func (c *restClient) GetTeam(ctx context.Context, id string) (cache.Team, error) {
	var w wireTeam
	if _, err := c.get(ctx, "/teams/"+url.PathEscape(id), nil, &w); err != nil {
		return cache.Team{}, err
	}
	return w.toTeam()
}

func (c *restClient) GetMessage(ctx context.Context, id string) (cache.Message, error) {
	var w wireMessage
	if _, err := c.get(ctx, "/messages/"+url.PathEscape(id), nil, &w); err != nil {
		return cache.Message{}, err
	}
	return w.toMessage()
}

func (c *restClient) ListMessages(ctx context.Context, roomID string, limit int) ([]cache.Message, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	query := url.Values{"roomId": {roomID}, "max": {strconv.Itoa(limit)}}
	var body struct {
		Items []wireMessage `json:"items"`
	}
	if _, err := c.get(ctx, "/messages", query, &body); err != nil {
		return nil, err
	}
	return convertMessages(body.Items), nil
}

func (c *restClient) ListReplies(ctx context.Context, parentID, roomID string) ([]cache.Message, error) {
	query := url.Values{"roomId": {roomID}, "parentId": {parentID}}
	var body struct {
		Items []wireMessage `json:"items"`
	}
	if _, err := c.get(ctx, "/messages", query, &body); err != nil {
		return nil, err
	}
	return convertMessages(body.Items), nil
}

func (c *restClient) SendMessage(ctx context.Context, out cache.MessageOut) (cache.Message, error) {
	payload := map[string]string{"roomId": out.RoomID, "text": out.Text}
	if out.ParentID != "" {
		payload["parentId"] = out.ParentID
	}
	var w wireMessage
	if _, err := c.do(ctx, http.MethodPost, c.baseURL+"/messages", payload, &w); err != nil {
		return cache.Message{}, err
	}
	return w.toMessage()
}

func (c *restClient) EditMessage(ctx context.Context, msgID, roomID, text string) (cache.Message, error) {
	payload := map[string]string{"roomId": roomID, "text": text}
	var w wireMessage
	u := fmt.Sprintf("%s/messages/%s", c.baseURL, url.PathEscape(msgID))
	if _, err := c.do(ctx, http.MethodPut, u, payload, &w); err != nil {
		return cache.Message{}, err
	}
	return w.toMessage()
}

func (c *restClient) DeleteMessage(ctx context.Context, msgID string) error {
	u := fmt.Sprintf("%s/messages/%s", c.baseURL, url.PathEscape(msgID))
	_, err := c.do(ctx, http.MethodDelete, u, nil, nil)
	return err
}
