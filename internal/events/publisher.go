package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/PrathushaR/ithotlist-api/internal/logger"
	"github.com/PrathushaR/ithotlist-api/internal/models"
	"github.com/rabbitmq/amqp091-go"
)

// Publisher announces successful mutations.
type Publisher interface {
	PublishJobCreated(ctx context.Context, job *models.Job) error
	PublishJobViewed(ctx context.Context, job *models.Job) error
	PublishJobApplied(ctx context.Context, job *models.Job) error

	PublishCandidateCreated(ctx context.Context, candidate *models.Candidate) error
	PublishResumeAttached(ctx context.Context, candidate *models.Candidate) error

	PublishHotlistCreated(ctx context.Context, hotlist *models.Hotlist) error

	Close() error
}

// EventPublisher implements Publisher on a RabbitMQ topic exchange. The
// routing key is the event type.
type EventPublisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	timeout      time.Duration
	enabled      bool
	log          logger.Logger
	mu           sync.Mutex
}

// DefaultPublishTimeout bounds how long a request waits on the broker.
const DefaultPublishTimeout = time.Second

// NewEventPublisher connects and declares the exchange. An empty URI yields
// a disabled publisher that drops every event. A non-positive timeout means
// DefaultPublishTimeout.
func NewEventPublisher(rabbitURI, exchangeName string, timeout time.Duration, log logger.Logger) (*EventPublisher, error) {
	log = log.WithFields(map[string]interface{}{"component": "events"})
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	if rabbitURI == "" {
		log.Warn("RabbitMQ URI is empty, event publishing is disabled", nil)
		return &EventPublisher{enabled: false, timeout: timeout, log: log}, nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &EventPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		timeout:      timeout,
		enabled:      true,
		log:          log,
	}, nil
}

// NewDisabledPublisher returns a publisher that drops every event.
func NewDisabledPublisher(log logger.Logger) *EventPublisher {
	return &EventPublisher{enabled: false, timeout: DefaultPublishTimeout, log: log}
}

func (p *EventPublisher) Enabled() bool {
	return p.enabled
}

func (p *EventPublisher) publishEvent(ctx context.Context, routingKey EventType, event interface{}) error {
	if !p.enabled {
		p.log.Debug("event publishing is disabled, skipping event", map[string]interface{}{"event": routingKey})
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchangeName,     // exchange
		string(routingKey), // routing key
		false,              // mandatory
		false,              // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", routingKey, err)
	}

	p.log.Debug("published event", map[string]interface{}{"event": routingKey})
	return nil
}

func jobEvent(t EventType, job *models.Job) *JobEvent {
	e := NewJobEvent(t, job.ID.Hex())
	e.Title = job.Title
	e.Company = job.Company.Name
	e.PrimaryTechnology = job.PrimaryTechnology
	e.Views = job.Views
	e.Applications = job.Applications
	return e
}

func (p *EventPublisher) PublishJobCreated(ctx context.Context, job *models.Job) error {
	return p.publishEvent(ctx, EventTypeJobCreated, jobEvent(EventTypeJobCreated, job))
}

func (p *EventPublisher) PublishJobViewed(ctx context.Context, job *models.Job) error {
	return p.publishEvent(ctx, EventTypeJobViewed, jobEvent(EventTypeJobViewed, job))
}

func (p *EventPublisher) PublishJobApplied(ctx context.Context, job *models.Job) error {
	return p.publishEvent(ctx, EventTypeJobApplied, jobEvent(EventTypeJobApplied, job))
}

func candidateEvent(t EventType, c *models.Candidate) *CandidateEvent {
	e := NewCandidateEvent(t, c.ID.Hex())
	e.Email = c.Email
	e.Technology = c.Technology
	if c.ResumeFile.Path != nil {
		e.ResumePath = *c.ResumeFile.Path
	}
	return e
}

func (p *EventPublisher) PublishCandidateCreated(ctx context.Context, candidate *models.Candidate) error {
	return p.publishEvent(ctx, EventTypeCandidateCreated, candidateEvent(EventTypeCandidateCreated, candidate))
}

func (p *EventPublisher) PublishResumeAttached(ctx context.Context, candidate *models.Candidate) error {
	return p.publishEvent(ctx, EventTypeCandidateResumeAttached, candidateEvent(EventTypeCandidateResumeAttached, candidate))
}

func (p *EventPublisher) PublishHotlistCreated(ctx context.Context, hotlist *models.Hotlist) error {
	e := NewHotlistEvent(hotlist.ID.Hex(), hotlist.Name, len(hotlist.Candidates))
	return p.publishEvent(ctx, EventTypeHotlistCreated, e)
}

// Close closes the channel and the connection.
func (p *EventPublisher) Close() error {
	if !p.enabled {
		return nil
	}

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Warn("error closing RabbitMQ channel", map[string]interface{}{"error": err})
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}
	return nil
}
