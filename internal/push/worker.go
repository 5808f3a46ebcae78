package push

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"synonym-game/internal/push/platforms"
)

var errCircuitOpen = errors.New("circuit open")

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case j := <-m.dispatch:
			metricQueueLen.Set(int64(len(m.dispatch)))
			m.process(ctx, j)
		}
	}
}

func (m *Manager) process(ctx context.Context, j job) {
	adapter := m.adapters[j.Target.Platform]
	if adapter == nil {
		metricDroppedTotal.Add(1)
		return
	}
	if err := m.beforeSend(j.key(), m.clock.Now()); err != nil {
		metricCircuitOpenTotal.Add(1)
		m.retryOrDrop(j, err)
		return
	}
	if err := adapter.Send(ctx, j.Target.Endpoint, j.Target.Secret, toPlatform(j.Msg)); err != nil {
		metricFailedTotal.Add(1)
		m.afterFailure(j.key(), m.clock.Now())
		m.retryOrDrop(j, err)
		return
	}
	metricSentTotal.Add(1)
	m.afterSuccess(j.key())
	if j.Msg.Final && j.Msg.PanelKey != "" {
		if f, ok := adapter.(platforms.PanelForgetter); ok {
			f.ForgetPanel(j.Target.Endpoint, j.Msg.PanelKey)
		}
	}
}

func (m *Manager) retryOrDrop(j job, err error) {
	if j.Attempt >= m.cfg.RetryMax {
		metricRetryDroppedTotal.Add(1)
		log.Warn().Err(err).Str("event", j.Msg.Event).Str("platform", j.Target.Platform).Int("attempts", j.Attempt+1).Msg("push dropped")
		return
	}
	j.Attempt++
	metricRetryTotal.Add(1)
	m.retryQ.Enqueue(j, m.cfg.RetryBase*time.Duration(1<<(j.Attempt-1)))
}

func (m *Manager) beforeSend(key string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.breakers[key]; !s.openUntil.IsZero() && now.Before(s.openUntil) {
		return errCircuitOpen
	}
	return nil
}

func (m *Manager) afterFailure(key string, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.breakers[key]
	s.failures++
	if s.failures >= m.cfg.FailureThreshold {
		s.openUntil = now.Add(m.cfg.CircuitOpenDuration)
		s.failures = 0
	}
	m.breakers[key] = s
}

func (m *Manager) afterSuccess(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.breakers, key)
}

func toPlatform(a Announcement) platforms.Message {
	fields := make([]platforms.Field, 0, len(a.Fields))
	for _, f := range a.Fields {
		fields = append(fields, platforms.Field{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return platforms.Message{
		PanelKey:    a.PanelKey,
		Title:       a.Title,
		Description: a.Description,
		Color:       a.Color,
		Timestamp:   a.Timestamp,
		Fields:      fields,
	}
}
