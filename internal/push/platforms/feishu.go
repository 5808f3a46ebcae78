package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

type FeishuAdapter struct {
	client *HTTPClient
	panels *panelIDs
}

func NewFeishuAdapter(client *HTTPClient) *FeishuAdapter {
	return &FeishuAdapter{client: client, panels: newPanelIDs()}
}

func (a *FeishuAdapter) Name() string { return "feishu" }

// Send posts an interactive card. The secret is either a bare signature or
// "sig:<signature>;bearer:<token>"; the bearer token is needed to edit panels.
func (a *FeishuAdapter) Send(ctx context.Context, endpoint, secret string, msg Message) error {
	sig, bearer := parseFeishuSecret(secret)
	headers := map[string]string{}
	if sig != "" {
		headers["X-Lark-Signature"] = sig
	}
	payload := feishuCard(msg)
	if strings.TrimSpace(msg.PanelKey) == "" || bearer == "" {
		_, _, err := a.client.Do(ctx, http.MethodPost, endpoint, headers, payload)
		return err
	}
	key := panelKey(endpoint, msg.PanelKey)
	if id := a.panels.get(key); id != "" {
		status, _, err := a.client.Do(ctx, http.MethodPatch, feishuEditURL(endpoint, id), map[string]string{"Authorization": "Bearer " + bearer}, payload)
		if err == nil || status != http.StatusNotFound {
			return err
		}
	}
	_, body, err := a.client.Do(ctx, http.MethodPost, endpoint, headers, payload)
	if err != nil {
		return err
	}
	id := feishuMessageID(body)
	if id == "" {
		return errors.New("feishu response missing message id")
	}
	a.panels.set(key, id)
	return nil
}

func (a *FeishuAdapter) ForgetPanel(endpoint, key string) {
	a.panels.forget(panelKey(endpoint, key))
}

func feishuCard(msg Message) map[string]any {
	body := msg.Description
	if body == "" {
		body = msg.Title
	}
	elements := []map[string]string{{"tag": "markdown", "content": body}}
	for _, f := range msg.Fields {
		elements = append(elements, map[string]string{"tag": "markdown", "content": "**" + f.Name + "**: " + f.Value})
	}
	return map[string]any{
		"msg_type": "interactive",
		"card": map[string]any{
			"header": map[string]any{
				"title":    map[string]string{"tag": "plain_text", "content": msg.Title},
				"template": "blue",
			},
			"elements": elements,
		},
	}
}

func parseFeishuSecret(secret string) (sig, bearer string) {
	parts := strings.Split(strings.TrimSpace(secret), ";")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		switch {
		case strings.HasPrefix(p, "sig:"):
			sig = strings.TrimSpace(strings.TrimPrefix(p, "sig:"))
		case strings.HasPrefix(p, "bearer:"):
			bearer = strings.TrimSpace(strings.TrimPrefix(p, "bearer:"))
		case len(parts) == 1:
			sig = p
		}
	}
	return sig, bearer
}

func feishuEditURL(endpoint, msgID string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	u.Path = "/open-apis/im/v1/messages/" + msgID
	u.RawQuery = ""
	return u.String()
}

func feishuMessageID(body []byte) string {
	var raw struct {
		MessageID string `json:"message_id"`
		Data      struct {
			MessageID string `json:"message_id"`
		} `json:"data"`
	}
	if json.Unmarshal(body, &raw) != nil {
		return ""
	}
	if raw.MessageID != "" {
		return raw.MessageID
	}
	return raw.Data.MessageID
}
