package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "owlgraph",
		Category:    "load",
		Version:     "v1",
		Description: "Ontology load run with provenance triples",
		Factory:     func() any { return &LoadEvent{} },
	})
	if err != nil {
		panic("failed to register LoadEvent: " + err.Error())
	}
}

// LoadEventType is the message type of load events.
var LoadEventType = message.Type{Domain: "owlgraph", Category: "load", Version: "v1"}

// LoadEvent is the message published after a load. It uses the graph entity
// ingestion format so a semstreams graph can record load provenance.
type LoadEvent struct {
	ID         string           `json:"id"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// LoadEntityID returns the entity ID of a load run.
func LoadEntityID(runID string) string {
	return fmt.Sprintf("owlgraph.load.%s", runID)
}

func (e *LoadEvent) EntityID() string          { return e.ID }
func (e *LoadEvent) Triples() []message.Triple { return e.TripleData }
func (e *LoadEvent) Schema() message.Type      { return LoadEventType }

func (e *LoadEvent) Validate() error {
	if e.ID == "" {
		return errors.New("load ID is required")
	}
	if len(e.TripleData) == 0 {
		return errors.New("load event has no triples")
	}
	return nil
}

func (e *LoadEvent) MarshalJSON() ([]byte, error) {
	type Alias LoadEvent
	return json.Marshal((*Alias)(e))
}

func (e *LoadEvent) UnmarshalJSON(data []byte) error {
	type Alias LoadEvent
	return json.Unmarshal(data, (*Alias)(e))
}
