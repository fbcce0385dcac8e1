package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/imedia765/a-051853/internal/application/member"
	"github.com/imedia765/a-051853/internal/application/password"
	"github.com/imedia765/a-051853/internal/logger"
	appCtx "github.com/imedia765/a-051853/internal/pkg/context"
)

const (
	DefaultExchange = "members.events"

	KeyLoggedIn        = "member.logged_in"
	KeyPasswordChanged = "member.password.changed"
	KeyProfileUpdated  = "member.profile.updated"

	// how long to wait for the broker's confirm
	publishWait = 2 * time.Second
	// a basic.return for an unroutable message may trail the ack slightly
	returnGrace = 25 * time.Millisecond
)

type Publisher struct {
	url      string
	exchange string

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{url: url, exchange: exchange}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetConn()
	return nil
}

func (p *Publisher) PublishMemberLoggedIn(ctx context.Context, evt member.LoggedInEvent) error {
	return p.publishJSON(ctx, KeyLoggedIn, evt)
}

func (p *Publisher) PublishProfileUpdated(ctx context.Context, evt member.ProfileUpdatedEvent) error {
	return p.publishJSON(ctx, KeyProfileUpdated, evt)
}

func (p *Publisher) PublishPasswordChanged(ctx context.Context, evt password.PasswordChangedEvent) error {
	return p.publishJSON(ctx, KeyPasswordChanged, evt)
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := p.openChannel(conn)
	if err != nil {
		_ = conn.Close()
		return err
	}
	p.conn, p.ch = conn, ch
	p.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))
	return nil
}

// openChannel declares the durable topic exchange and puts the channel in confirm mode.
func (p *Publisher) openChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	const durable, autoDelete, internal, noWait = true, false, false, false
	if err := ch.ExchangeDeclare(p.exchange, "topic", durable, autoDelete, internal, noWait, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("exchange declare %s: %w", p.exchange, err)
	}
	if err := ch.Confirm(noWait); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("confirm mode: %w", err)
	}
	return ch, nil
}

func (p *Publisher) ensureConnected() error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil {
		return nil
	}
	p.resetConn()
	return p.connect()
}

// discardPending empties confirms and returns left over from a timed-out publish.
func (p *Publisher) discardPending() {
	for {
		select {
		case <-p.confirmCh:
		case <-p.returnCh:
		default:
			return
		}
	}
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", routingKey, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishWait)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureConnected(); err != nil {
		return err
	}
	p.discardPending()

	const mandatory, immediate = true, false
	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, mandatory, immediate, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now().UTC(),
		Type:          routingKey,
		AppId:         "member-service",
		CorrelationId: appCtx.GetRequestID(ctx),
		Body:          body,
	})
	if err != nil {
		p.resetConn()
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return p.awaitConfirm(ctx, routingKey)
}

func unroutable(key string, ret amqp.Return) error {
	return fmt.Errorf("rabbitmq unroutable: key=%s code=%d text=%s", key, ret.ReplyCode, ret.ReplyText)
}

// awaitConfirm waits for the broker ack. Unroutable messages are acked too,
// so a return arriving just after the ack still fails the publish.
func (p *Publisher) awaitConfirm(ctx context.Context, key string) error {
	select {
	case ret := <-p.returnCh:
		return unroutable(key, ret)
	case <-ctx.Done():
		return fmt.Errorf("rabbitmq publish: key=%s: %w", key, ctx.Err())
	case conf, ok := <-p.confirmCh:
		if !ok {
			p.resetConn()
			return fmt.Errorf("rabbitmq channel closed awaiting confirm: key=%s", key)
		}
		select {
		case ret := <-p.returnCh:
			return unroutable(key, ret)
		case <-time.After(returnGrace):
		}
		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: key=%s tag=%d", key, conf.DeliveryTag)
		}
		logger.WithCtx(ctx).Debug().Str("routing_key", key).Uint64("tag", conf.DeliveryTag).Msg("member event published")
		return nil
	}
}

func (p *Publisher) resetConn() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
