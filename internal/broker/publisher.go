// Package broker публикует события матчей в RabbitMQ.
package broker

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"rugby-scorekeeper/internal/session"
)

const queueSize = 256

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher реализует session.Notifier. Notify не блокирует: сообщения уходят
// из отдельной горутины, при переполнении очереди отбрасываются.
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	log      *zap.SugaredLogger

	queue     chan session.Notification
	done      chan struct{}
	closeOnce sync.Once
	// WithTicks: публиковать и ежесекундные снимки.
	WithTicks bool
}

func Dial(url, exchange string, log *zap.SugaredLogger) (*Publisher, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 30 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	p := NewPublisher(ch, exchange, log)
	p.conn = conn
	log.Infow("Подключение к AMQP установлено", "exchange", exchange)
	return p, nil
}

func NewPublisher(ch channel, exchange string, log *zap.SugaredLogger) *Publisher {
	p := &Publisher{
		ch:       ch,
		exchange: exchange,
		log:      log,
		queue:    make(chan session.Notification, queueSize),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// RoutingKey: match.<id>.<kind>, например match.abc.half_ended.
func RoutingKey(n session.Notification) string {
	return fmt.Sprintf("match.%s.%s", n.MatchID, strings.ToLower(string(n.Kind)))
}

func (p *Publisher) Notify(n session.Notification) {
	if n.Kind == session.KindTick && !p.WithTicks {
		return
	}
	select {
	case <-p.done:
		return
	default:
	}
	select {
	case p.queue <- n:
	default:
		p.log.Warnw("Очередь AMQP переполнена, событие пропущено", "match", n.MatchID, "kind", n.Kind)
	}
}

func (p *Publisher) run() {
	for {
		select {
		case <-p.done:
			return
		case n := <-p.queue:
			if err := p.publish(n); err != nil {
				p.log.Errorw("Ошибка публикации в AMQP", "match", n.MatchID, "kind", n.Kind, "error", err)
			}
		}
	}
}

func (p *Publisher) publish(n session.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.ch.Publish(p.exchange, RoutingKey(n), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    n.At,
		Type:         string(n.Kind),
		Body:         body,
	})
}

func (p *Publisher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		err = p.ch.Close()
		if p.conn != nil {
			if cerr := p.conn.Close(); err == nil {
				err = cerr
			}
		}
	})
	return err
}
