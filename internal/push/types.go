package push

import "time"

const (
	EventLobbyJoined  = "lobby_joined"
	EventGameStart    = "game_start"
	EventRoundResult  = "round_result"
	EventGameComplete = "game_complete"
)

// Target is one webhook that receives announcements. An empty Events list
// means every event.
type Target struct {
	Platform string   `json:"platform"`
	Endpoint string   `json:"endpoint"`
	Secret   string   `json:"secret"`
	Events   []string `json:"events"`
	Enabled  bool     `json:"enabled"`
}

func (t Target) wants(event string) bool {
	if len(t.Events) == 0 {
		return true
	}
	for _, e := range t.Events {
		if e == event {
			return true
		}
	}
	return false
}

type Config struct {
	Enabled             bool
	Targets             []Target
	Workers             int
	RetryMax            int
	RetryBase           time.Duration
	FailureThreshold    int
	CircuitOpenDuration time.Duration
	RequestTimeout      time.Duration
	DispatchBuffer      int
}

type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Announcement is a platform-neutral message. Announcements sharing a
// PanelKey edit one message in place where the platform allows it.
type Announcement struct {
	Event       string
	PanelKey    string
	Final       bool
	Title       string
	Description string
	Color       int
	Timestamp   string
	Fields      []Field
}

type job struct {
	Target  Target
	Msg     Announcement
	Attempt int
}

func (j job) key() string {
	return targetKey(j.Target)
}

func targetKey(t Target) string {
	return t.Platform + "|" + t.Endpoint
}
