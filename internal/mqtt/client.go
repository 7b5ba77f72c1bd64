// Package mqtt owns the single broker connection of the bridge: publish,
// subscribe, unsubscribe and disconnect, plus topic helpers and inbound
// payload normalization.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/ibs-source/rc-bridge/internal/config"
	"github.com/ibs-source/rc-bridge/internal/log"
	"github.com/sirupsen/logrus"
)

// Client is the broker connection. It remembers its subscriptions so they
// are restored after a reconnect, and the retained topics it owns so they
// are cleared on Close.
type Client struct {
	client            paho.Client
	qos               byte
	writeTimeout      time.Duration
	subscribeTimeout  time.Duration
	disconnectTimeout uint

	mu            sync.Mutex
	subscriptions map[string]paho.MessageHandler
	retained      map[string]struct{}
	connected     bool

	log *log.Logger
}

// Connect dials the broker and waits for the first handshake. Failing to
// connect within cfg.ConnectTimeout returns ErrConnectionFailed; later
// connection losses are handled by automatic reconnects.
func Connect(cfg *config.MQTTConfig, logger *log.Logger) (*Client, error) {
	c := &Client{
		qos:               cfg.QoS,
		writeTimeout:      cfg.WriteTimeout,
		subscribeTimeout:  cfg.SubscribeTimeout,
		disconnectTimeout: cfg.DisconnectTimeout,
		subscriptions:     make(map[string]paho.MessageHandler),
		retained:          make(map[string]struct{}),
		log:               logger,
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetWriteTimeout(cfg.WriteTimeout)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(cfg.MaxReconnectInterval)
	opts.SetCleanSession(true)
	opts.SetResumeSubs(true)
	opts.SetOrderMatters(false)

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		if err != nil {
			logger.Error("MQTT connection lost: %v", err)
		}
	})

	opts.SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
		logger.Info("MQTT reconnecting...")
	})

	opts.SetOnConnectHandler(c.onConnect)

	if cfg.TLSEnabled {
		tlsConfig, err := newTLSConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		opts.SetTLSConfig(tlsConfig)
	}

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("%w: no handshake within %s", ErrConnectionFailed, cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return c, nil
}

// onConnect restores subscriptions after a reconnect. The clean session
// drops them on the broker side.
func (c *Client) onConnect(client paho.Client) {
	c.mu.Lock()
	reconnect := c.connected
	c.connected = true
	subs := make(map[string]paho.MessageHandler, len(c.subscriptions))
	for pattern, h := range c.subscriptions {
		subs[pattern] = h
	}
	c.mu.Unlock()

	if !reconnect {
		c.log.Info("MQTT connected successfully")
		return
	}

	c.log.Info("MQTT reconnected, restoring %d subscriptions", len(subs))
	for pattern, h := range subs {
		token := client.Subscribe(pattern, c.qos, h)
		if !token.WaitTimeout(c.subscribeTimeout) || token.Error() != nil {
			c.log.ErrorWithFields(logrus.Fields{"pattern": pattern}, "Failed to restore subscription: %v", token.Error())
		}
	}
}

// newTLSConfig creates a TLS configuration from MQTT config
func newTLSConfig(cfg *config.MQTTConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkip, // #nosec G402 - configurable for testing environments
		MinVersion:         tls.VersionTLS12,
	}

	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert/key: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Publish encodes payload and sends it to topic. Delivery defaults to the
// configured QoS, not retained.
func (c *Client) Publish(ctx context.Context, topic string, payload any, opts ...PublishOption) error {
	if err := ValidateTopic(topic); err != nil {
		return err
	}
	o, err := ResolvePublishOptions(c.qos, opts)
	if err != nil {
		return err
	}
	data, err := Encode(payload)
	if err != nil {
		return err
	}
	if !c.client.IsConnected() {
		return ErrNotConnected
	}

	if err := c.wait(ctx, c.client.Publish(topic, o.QoS, o.Retained, data), c.writeTimeout); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}

	if o.Retained {
		c.mu.Lock()
		if len(data) == 0 {
			delete(c.retained, topic)
		} else {
			c.retained[topic] = struct{}{}
		}
		c.mu.Unlock()
	}
	return nil
}

// Subscribe registers handler for pattern on the broker. Subscribing the same
// pattern again replaces the handler.
func (c *Client) Subscribe(ctx context.Context, pattern string, handler Handler) error {
	if err := ValidatePattern(pattern); err != nil {
		return err
	}

	callback := func(_ paho.Client, m paho.Message) {
		handler(Normalize(Message{
			Topic:     m.Topic(),
			Payload:   m.Payload(),
			QoS:       m.Qos(),
			Retained:  m.Retained(),
			Duplicate: m.Duplicate(),
			MessageID: m.MessageID(),
		}))
	}

	if err := c.wait(ctx, c.client.Subscribe(pattern, c.qos, callback), c.subscribeTimeout); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, pattern, err)
	}

	c.mu.Lock()
	c.subscriptions[pattern] = callback
	c.mu.Unlock()
	return nil
}

// Unsubscribe removes the broker subscription for pattern.
func (c *Client) Unsubscribe(ctx context.Context, pattern string) error {
	c.mu.Lock()
	delete(c.subscriptions, pattern)
	c.mu.Unlock()

	if err := c.wait(ctx, c.client.Unsubscribe(pattern), c.subscribeTimeout); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnsubscribeFailed, pattern, err)
	}
	return nil
}

// IsConnected reports whether the connection is up or being re-established.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Close clears every retained topic this client published and disconnects.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	topics := make([]string, 0, len(c.retained))
	for topic := range c.retained {
		topics = append(topics, topic)
	}
	c.mu.Unlock()

	var errs []error
	if c.client.IsConnected() {
		for _, topic := range topics {
			if err := c.Publish(ctx, topic, []byte{}, WithRetained()); err != nil {
				errs = append(errs, fmt.Errorf("failed to clear retained topic %s: %w", topic, err))
			}
		}
		c.client.Disconnect(c.disconnectTimeout)
	}
	return errors.Join(errs...)
}

// wait blocks until token completes, ctx ends or timeout elapses.
func (c *Client) wait(ctx context.Context, token paho.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timeout after %s", timeout)
	}
}
