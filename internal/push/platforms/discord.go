package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

type DiscordAdapter struct {
	client *HTTPClient
	panels *panelIDs
}

func NewDiscordAdapter(client *HTTPClient) *DiscordAdapter {
	return &DiscordAdapter{client: client, panels: newPanelIDs()}
}

func (a *DiscordAdapter) Name() string { return "discord" }

func (a *DiscordAdapter) Send(ctx context.Context, endpoint, _ string, msg Message) error {
	payload := discordPayload(msg)
	if strings.TrimSpace(msg.PanelKey) == "" {
		_, _, err := a.client.Do(ctx, http.MethodPost, endpoint, nil, payload)
		return err
	}
	key := panelKey(endpoint, msg.PanelKey)
	if id := a.panels.get(key); id != "" {
		if editURL, ok := discordEditURL(endpoint, id); ok {
			status, _, err := a.client.Do(ctx, http.MethodPatch, editURL, nil, payload)
			if err == nil || status != http.StatusNotFound {
				return err
			}
		}
	}
	id, err := a.create(ctx, endpoint, payload)
	if err != nil {
		return err
	}
	a.panels.set(key, id)
	return nil
}

func (a *DiscordAdapter) ForgetPanel(endpoint, key string) {
	a.panels.forget(panelKey(endpoint, key))
}

func (a *DiscordAdapter) create(ctx context.Context, endpoint string, payload any) (string, error) {
	wait := endpoint + "?wait=true"
	if strings.Contains(endpoint, "?") {
		wait = endpoint + "&wait=true"
	}
	_, body, err := a.client.Do(ctx, http.MethodPost, wait, nil, payload)
	if err != nil {
		return "", err
	}
	var created struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(body, &created) != nil || strings.TrimSpace(created.ID) == "" {
		return "", errors.New("discord webhook response missing message id")
	}
	return created.ID, nil
}

func discordPayload(msg Message) map[string]any {
	type embedField struct {
		Name   string `json:"name"`
		Value  string `json:"value"`
		Inline bool   `json:"inline"`
	}
	fields := make([]embedField, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, embedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	embed := map[string]any{
		"title":       msg.Title,
		"description": msg.Description,
		"color":       msg.Color,
		"fields":      fields,
	}
	if msg.Timestamp != "" {
		embed["timestamp"] = msg.Timestamp
	}
	return map[string]any{"embeds": []map[string]any{embed}}
}

// discordEditURL turns /api/webhooks/{id}/{token} into the message edit endpoint.
func discordEditURL(endpoint, msgID string) (string, bool) {
	u, err := url.Parse(endpoint)
	if err != nil || msgID == "" {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 || parts[0] != "api" || parts[1] != "webhooks" {
		return "", false
	}
	u.Path = "/api/webhooks/" + parts[2] + "/" + parts[3] + "/messages/" + msgID
	u.RawQuery = ""
	return u.String(), true
}
