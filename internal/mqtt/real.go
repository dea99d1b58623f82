package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// bufferCapacity bounds the number of messages held while disconnected.
const bufferCapacity = 64

// RealPublisher publishes to an actual MQTT broker. While the broker is
// unreachable, messages are held in a replay buffer and drained from the
// reconnect handler, so detection events raised during an outage are not
// lost.
type RealPublisher struct {
	client paho.Client

	mu  sync.Mutex
	buf *replayBuffer
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is established in the background with retry; publishing before the first
// connect lands in the replay buffer.
func NewRealPublisher(broker, clientID string) *RealPublisher {
	p := &RealPublisher{buf: newReplayBuffer(bufferCapacity)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) {
			p.drain()
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// Publish sends a radar event to the broker (QoS 0, not retained).
func (p *RealPublisher) Publish(event Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.publish(Topic, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the broker.
// QoS 1 (at-least-once): startup/shutdown events should survive a flaky link.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(TopicSystem, 1, event.Retained, payload)
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.buf.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		n := p.buf.len()
		p.mu.Unlock()
		log.Printf("mqtt: disconnected, buffered message (%d pending)", n)
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// drain replays buffered messages after (re)connecting.
func (p *RealPublisher) drain() {
	p.mu.Lock()
	msgs := p.buf.drainAll()
	p.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	for _, m := range msgs {
		p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	}
	log.Printf("mqtt: replayed %d buffered messages", len(msgs))
}

// IsConnected reports whether the broker connection is open.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
