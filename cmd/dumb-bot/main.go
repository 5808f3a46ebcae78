package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"synonym-game/internal/config"
	"synonym-game/internal/engine"
	"synonym-game/internal/logging"
	"synonym-game/internal/stream"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type viewEvent struct {
	ID   string      `json:"id"`
	Type string      `json:"type"`
	Data engine.View `json:"data"`
}

func main() {
	_ = godotenv.Load()
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	closer := logging.Init(logCfg)
	defer closer.Close()
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL(cfg.ClientURL), nil)
	if err != nil {
		log.Fatal().Err(err).Msg("dial client stream failed")
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	api := &apiClient{base: strings.TrimRight(cfg.ClientURL, "/"), http: &http.Client{Timeout: 30 * time.Second}}
	b := newBot(cfg)
	if v, err := api.state(ctx); err == nil {
		b.step(ctx, api, v)
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Error().Err(err).Msg("client stream closed")
			}
			return
		}
		var ev viewEvent
		if err := json.Unmarshal(data, &ev); err != nil || ev.Type != stream.EventView {
			continue
		}
		b.step(ctx, api, ev.Data)
	}
}

func wsURL(clientURL string) string {
	u := strings.TrimRight(clientURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

type apiClient struct {
	base string
	http *http.Client
}

func (c *apiClient) state(ctx context.Context) (engine.View, error) {
	var v engine.View
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/state", nil)
	if err != nil {
		return v, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return v, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return v, fmt.Errorf("state: status %d", resp.StatusCode)
	}
	err = json.NewDecoder(resp.Body).Decode(&v)
	return v, err
}

func (c *apiClient) post(ctx context.Context, a action) error {
	var body io.Reader = http.NoBody
	if a.Body != nil {
		raw, err := json.Marshal(a.Body)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+a.Path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var e struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s: %s (%s)", a.Name, e.Error, e.Message)
	}
	return nil
}
