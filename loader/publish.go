package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/owlgraph/owl"
	vocab "github.com/c360studio/owlgraph/vocabulary/owlgraph"
)

// LoadStream is the JetStream stream that retains load events.
const LoadStream = "OWLGRAPH_LOADS"

// Publisher sends a load event.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

func (l *Loader) publish(ctx context.Context, set *owl.Set, roots []Root, stats *LoadStats, started time.Time) error {
	event := l.event(set, roots, stats, started, time.Now())
	if err := event.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal load event: %w", err)
	}
	if err := l.publisher.Publish(ctx, l.cfg.NATS.Subject, data); err != nil {
		return fmt.Errorf("publish load event: %w", err)
	}
	l.logger.Debug("Published load event", "subject", l.cfg.NATS.Subject, "run", stats.RunID)
	return nil
}

func (l *Loader) event(set *owl.Set, roots []Root, stats *LoadStats, started, ended time.Time) *LoadEvent {
	entityID := LoadEntityID(stats.RunID)
	triple := func(predicate string, object any) message.Triple {
		return message.Triple{
			Subject:    entityID,
			Predicate:  predicate,
			Object:     object,
			Source:     "owlgraph.loader",
			Timestamp:  ended,
			Confidence: 1.0,
		}
	}

	triples := []message.Triple{
		triple(vocab.LoadEngine, l.cfg.Graph.Engine),
		triple(vocab.LoadNodeCount, stats.NodeCount),
		triple(vocab.LoadEdgeCount, stats.EdgeCount),
		triple(vocab.LoadReasoned, stats.Reasoned),
		triple(vocab.LoadStartedAt, started.Format(time.RFC3339)),
		triple(vocab.LoadEndedAt, ended.Format(time.RFC3339)),
	}
	used := make(map[owl.IRI]bool)
	for _, r := range roots {
		used[r.IRI] = true
	}
	for _, o := range set.Ontologies() {
		if len(roots) == 0 || used[o.ID] {
			triples = append(triples, triple(vocab.LoadOntology, string(o.ID)))
		}
		if o.Document != "" {
			triples = append(triples, triple(vocab.LoadDocument, o.Document))
		}
	}
	for _, phase := range []string{PhaseReason, PhaseTranslate, PhaseFlush, PhaseExistentials, PhaseCategories} {
		if d, ok := stats.ElapsedByPhase[phase]; ok {
			triples = append(triples, triple(vocab.LoadElapsed, fmt.Sprintf("%s=%d", phase, d.Milliseconds())))
		}
	}

	return &LoadEvent{ID: entityID, TripleData: triples, UpdatedAt: ended}
}

// NATSPublisher publishes load events to JetStream.
type NATSPublisher struct {
	client *natsclient.Client
	js     jetstream.JetStream
	logger *slog.Logger
}

// ConnectNATS connects to url and ensures the load event stream captures
// subject.
func ConnectNATS(ctx context.Context, url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Connecting to NATS", "url", url)

	client, err := natsclient.NewClient(url,
		natsclient.WithName("owlgraph"),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithCircuitBreakerThreshold(20),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}
	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, url)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, url)
	}

	js, err := client.JetStream()
	if err != nil {
		return nil, fmt.Errorf("get jetstream: %w", err)
	}
	_, err = js.CreateOrUpdateStream(connCtx, jetstream.StreamConfig{
		Name:      LoadStream,
		Subjects:  []string{subject},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    30 * 24 * time.Hour,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure stream %s: %w", LoadStream, err)
	}

	logger.Info("Connected to NATS", "url", url, "stream", LoadStream)
	return &NATSPublisher{client: client, js: js, logger: logger}, nil
}

// Publish sends data to subject and waits for the stream acknowledgement.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	ack, err := p.js.Publish(ctx, subject, data)
	if err != nil {
		return err
	}
	p.logger.Debug("Load event stored", "stream", ack.Stream, "seq", ack.Sequence)
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close(ctx context.Context) {
	p.client.Close(ctx)
}

func wrapNATSError(err error, url string) error {
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf("NATS connection failed: %w (is NATS running at %s? unset nats.url to disable load events)", err, url)
	}
	return fmt.Errorf("NATS connection failed: %w", err)
}
