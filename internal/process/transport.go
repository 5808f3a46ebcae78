package process

import "context"

type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Message is the AO message envelope used for both dry runs and writes.
type Message struct {
	ID     string `json:"Id,omitempty"`
	Target string `json:"Target"`
	Owner  string `json:"Owner,omitempty"`
	Anchor string `json:"Anchor,omitempty"`
	Data   string `json:"Data"`
	Tags   []Tag  `json:"Tags"`
}

func (m Message) Tag(name string) string {
	for _, t := range m.Tags {
		if t.Name == name {
			return t.Value
		}
	}
	return ""
}

type OutMessage struct {
	Data   string `json:"Data"`
	Target string `json:"Target,omitempty"`
	Tags   []Tag  `json:"Tags,omitempty"`
}

// Result is what a compute unit returns for an evaluated message.
type Result struct {
	Messages []OutMessage `json:"Messages"`
	Error    string       `json:"Error,omitempty"`
}

// Transport carries messages to a process. DryRun evaluates without side
// effects; Send appends the message and waits for its result.
type Transport interface {
	DryRun(ctx context.Context, msg Message) (Result, error)
	Send(ctx context.Context, msg Message) (Result, error)
}
