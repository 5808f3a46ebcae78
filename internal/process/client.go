package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"synonym-game/internal/game"
)

const (
	ActionInfo        = "Info"
	ActionCreateLobby = "CreateLobby"
	ActionJoinLobby   = "JoinLobby"
	ActionLeaveLobby  = "LeaveLobby"
	ActionListLobbies = "ListLobbies"
	ActionLobbyState  = "LobbyState"
	ActionPlayerReady = "PlayerReady"
	ActionSubmitWord  = "SubmitWord"
)

const (
	StatusSuccess   = "success"
	StatusConnected = "Connected"
	StatusOK        = "ok"
)

type Options struct {
	ProcessID string
	Timeout   time.Duration
}

// Client sends named actions to the process. Reads go through DryRun and may
// be retried freely; writes go through Send exactly once per call and are
// never retried here.
type Client struct {
	transport Transport
	processID string
	timeout   time.Duration
	schemas   *schemaSet
}

func NewClient(t Transport, opts Options) (*Client, error) {
	if t == nil {
		return nil, errors.New("process transport is required")
	}
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{transport: t, processID: opts.ProcessID, timeout: opts.Timeout, schemas: schemas}, nil
}

func (c *Client) Timeout() time.Duration { return c.timeout }

// Query runs a read-only action and returns the validated payload.
func (c *Client) Query(ctx context.Context, action string, params map[string]string) (json.RawMessage, error) {
	return c.call(ctx, action, "", params, false)
}

// Send runs a state-changing action on behalf of from.
func (c *Client) Send(ctx context.Context, action, from string, params map[string]string) (json.RawMessage, error) {
	return c.call(ctx, action, from, params, true)
}

func (c *Client) call(ctx context.Context, action, from string, params map[string]string, write bool) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.message(action, from, params, write)
	if err != nil {
		return nil, c.fail(&Failure{Kind: KindMalformed, Action: action, Message: "encode request", Err: err})
	}

	metricRequests.Add(action, 1)
	started := time.Now()
	var res Result
	if write {
		res, err = c.transport.Send(ctx, msg)
	} else {
		res, err = c.transport.DryRun(ctx, msg)
	}
	metricLatency.Add(action, time.Since(started).Milliseconds())
	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			if f.Action == "" {
				f.Action = action
			}
			return nil, c.fail(f)
		}
		return nil, c.fail(networkFailure(action, err))
	}

	payload, f := c.decode(action, res)
	if f != nil {
		return nil, c.fail(f)
	}
	return payload, nil
}

func (c *Client) message(action, from string, params map[string]string, write bool) (Message, error) {
	data := ""
	if len(params) > 0 {
		raw, err := json.Marshal(params)
		if err != nil {
			return Message{}, err
		}
		data = string(raw)
	}
	tags := []Tag{{Name: "Action", Value: action}}
	if write {
		tags = append(tags, Tag{Name: "Intent-Id", Value: NewID()})
	}
	owner := from
	if owner == "" {
		owner = "anonymous"
	}
	return Message{ID: NewID(), Target: c.processID, Owner: owner, Anchor: "0", Data: data, Tags: tags}, nil
}

// decode checks the result in order: process error, missing data, status,
// then shape.
func (c *Client) decode(action string, res Result) (json.RawMessage, *Failure) {
	if res.Error != "" {
		return nil, processFailure(action, res.Error)
	}
	if len(res.Messages) == 0 || strings.TrimSpace(res.Messages[0].Data) == "" {
		return nil, malformed(action, "response carried no data")
	}
	raw := json.RawMessage(res.Messages[0].Data)

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, malformed(action, "response data is not json: %v", err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, malformed(action, "response data is not an object")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, malformed(action, "response status: %v", err)
	}
	switch env.Status {
	case StatusSuccess, StatusConnected, StatusOK:
	case "":
		return nil, malformed(action, "response has no status")
	default:
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = env.Status
		}
		return nil, processFailure(action, msg)
	}

	if err := c.schemas.validate(action, doc); err != nil {
		return nil, &Failure{Kind: KindMalformed, Action: action, Message: "unexpected response shape", Err: err}
	}
	return raw, nil
}

func (c *Client) fail(f *Failure) error {
	metricFailures.Add(string(f.Kind), 1)
	log.Debug().Str("action", f.Action).Str("kind", string(f.Kind)).Msg(f.Message)
	return f
}

type Info struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Name    string `json:"name"`
}

func (c *Client) Info(ctx context.Context) (Info, error) {
	raw, err := c.Query(ctx, ActionInfo, nil)
	if err != nil {
		return Info{}, err
	}
	var w wireInfo
	if err := json.Unmarshal(raw, &w); err != nil {
		return Info{}, c.fail(malformed(ActionInfo, "%v", err))
	}
	return Info{Status: w.Status, Version: string(w.Version), Name: w.Name}, nil
}

// CreateLobby creates a lobby owned by from and returns its id.
func (c *Client) CreateLobby(ctx context.Context, from, name string) (string, error) {
	var params map[string]string
	if name != "" {
		params = map[string]string{"name": name}
	}
	raw, err := c.Send(ctx, ActionCreateLobby, from, params)
	if err != nil {
		return "", err
	}
	var w wireCreated
	if err := json.Unmarshal(raw, &w); err != nil {
		return "", c.fail(malformed(ActionCreateLobby, "%v", err))
	}
	if w.LobbyID == "" {
		return "", c.fail(malformed(ActionCreateLobby, "empty lobby id"))
	}
	return string(w.LobbyID), nil
}

func (c *Client) JoinLobby(ctx context.Context, from, lobbyID string) error {
	_, err := c.Send(ctx, ActionJoinLobby, from, map[string]string{"lobbyId": lobbyID})
	return err
}

func (c *Client) LeaveLobby(ctx context.Context, from, lobbyID string) error {
	_, err := c.Send(ctx, ActionLeaveLobby, from, map[string]string{"lobbyId": lobbyID})
	return err
}

func (c *Client) PlayerReady(ctx context.Context, from, lobbyID string) error {
	_, err := c.Send(ctx, ActionPlayerReady, from, map[string]string{"lobbyId": lobbyID, "playerId": from})
	return err
}

func (c *Client) SubmitWord(ctx context.Context, from, lobbyID, word string) error {
	_, err := c.Send(ctx, ActionSubmitWord, from, map[string]string{"lobbyId": lobbyID, "playerId": from, "word": word})
	return err
}

func (c *Client) ListLobbies(ctx context.Context) ([]game.LobbySummary, error) {
	raw, err := c.Query(ctx, ActionListLobbies, nil)
	if err != nil {
		return nil, err
	}
	var w struct {
		Lobbies []wireSummary `json:"lobbies"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, c.fail(malformed(ActionListLobbies, "%v", err))
	}
	out := make([]game.LobbySummary, 0, len(w.Lobbies))
	for _, s := range w.Lobbies {
		out = append(out, s.toGame())
	}
	return out, nil
}

// LobbyState fetches the detail snapshot of lobbyID. A response for a
// different lobby is malformed.
func (c *Client) LobbyState(ctx context.Context, lobbyID string) (game.LobbyDetail, error) {
	raw, err := c.Query(ctx, ActionLobbyState, map[string]string{"lobbyId": lobbyID})
	if err != nil {
		return game.LobbyDetail{}, err
	}
	var w struct {
		Lobby *wireDetail `json:"lobby"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return game.LobbyDetail{}, c.fail(malformed(ActionLobbyState, "%v", err))
	}
	if w.Lobby == nil {
		return game.LobbyDetail{}, c.fail(malformed(ActionLobbyState, "no lobby in response"))
	}
	d, err := w.Lobby.toGame()
	if err != nil {
		return game.LobbyDetail{}, c.fail(malformed(ActionLobbyState, "%v", err))
	}
	if d.ID != lobbyID {
		return game.LobbyDetail{}, c.fail(malformed(ActionLobbyState, "asked for lobby %s, got %s", lobbyID, d.ID))
	}
	return d, nil
}
