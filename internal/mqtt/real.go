package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
	"github.com/sweeney/morse-key/internal/logic"
)

// client is the subset of paho.Client the publisher uses.
type client interface {
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Options configures a RealPublisher.
type Options struct {
	Broker     string
	ClientID   string
	BufferSize int // messages held while disconnected; 0 = DefaultBufferSize
}

// RealPublisher publishes to an actual MQTT broker. Messages published
// while the connection is down are buffered and replayed on reconnect.
type RealPublisher struct {
	client client

	mu  sync.Mutex
	out *outbox
}

// NewRealPublisher creates a publisher connected to the given broker.
// The broker's last will marks the key as disconnected.
func NewRealPublisher(opts Options) (*RealPublisher, error) {
	if opts.ClientID == "" {
		opts.ClientID = "morse-key"
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	p := &RealPublisher{out: newOutbox(opts.BufferSize)}

	pahoOpts := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(func(paho.Client) {
			log.Info().Str("broker", opts.Broker).Msg("mqtt connected")
			p.flush()
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn().Err(err).Msg("mqtt connection lost")
		})

	c := paho.NewClient(pahoOpts)
	p.client = c

	// Connect keeps retrying in the background; until it succeeds
	// publishes go to the outbox.
	token := c.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Warn().Str("broker", opts.Broker).Msg("mqtt broker not reachable yet, buffering")
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

func newWithClient(c client, bufferSize int) *RealPublisher {
	return &RealPublisher{client: c, out: newOutbox(bufferSize)}
}

// Publish sends a key event to the MQTT broker.
func (p *RealPublisher) Publish(at time.Time, event logic.Event) error {
	if !Publishable(event) {
		return nil
	}
	payload, err := FormatPayload(at, event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.send(outMsg{topic: Topic, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) - we want to ensure delivery
	return p.send(outMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) send(msg outMsg) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.out.add(msg)
		p.mu.Unlock()
		return nil
	}
	if err := p.publish(msg); err != nil {
		p.mu.Lock()
		p.out.add(msg)
		p.mu.Unlock()
		return err
	}
	return nil
}

func (p *RealPublisher) publish(msg outMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	return nil
}

// flush replays the outbox in order. On the first failure the rest go
// back to the front of the outbox.
func (p *RealPublisher) flush() {
	p.mu.Lock()
	pending := p.out.takeAll()
	p.mu.Unlock()

	if len(pending) == 0 {
		return
	}
	log.Info().
		Int("count", len(pending)).
		Dur("oldest", time.Since(pending[0].queued)).
		Msg("mqtt replaying outbox")

	for i, msg := range pending {
		if err := p.publish(msg); err != nil {
			log.Warn().Err(err).Int("remaining", len(pending)-i).Msg("mqtt replay failed")
			p.mu.Lock()
			p.out.requeue(pending[i:])
			p.mu.Unlock()
			return
		}
	}
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.size()
}

// Dropped returns how many messages the outbox has discarded since start.
func (p *RealPublisher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.droppedCount()
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
