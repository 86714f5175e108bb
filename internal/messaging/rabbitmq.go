package messaging

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

type RabbitMQConfig struct {
	URL        string
	Exchange   string
	RetryCount int
	RetryDelay time.Duration
}

func (c *RabbitMQConfig) normalize() {
	if c.RetryCount <= 0 {
		c.RetryCount = 5
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
}

type RabbitMQClient struct {
	config     RabbitMQConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	mu         sync.RWMutex
	isClosing  bool
}

func NewRabbitMQClient(config RabbitMQConfig) *RabbitMQClient {
	config.normalize()
	return &RabbitMQClient{config: config}
}

func (r *RabbitMQClient) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	for i := 0; i < r.config.RetryCount; i++ {
		r.connection, err = amqp.Dial(r.config.URL)
		if err != nil {
			log.Printf("level=warn msg=rabbitmq connect failed attempt=%d/%d err=%v", i+1, r.config.RetryCount, err)
			if i < r.config.RetryCount-1 {
				time.Sleep(r.config.RetryDelay)
			}
			continue
		}

		r.channel, err = r.connection.Channel()
		if err != nil {
			r.connection.Close()
			return fmt.Errorf("open rabbitmq channel: %w", err)
		}

		err = r.channel.ExchangeDeclare(
			r.config.Exchange, // name
			"topic",           // type
			true,              // durable
			false,             // auto-deleted
			false,             // internal
			false,             // no-wait
			nil,               // arguments
		)
		if err != nil {
			r.channel.Close()
			r.connection.Close()
			return fmt.Errorf("declare exchange %s: %w", r.config.Exchange, err)
		}

		log.Printf("level=info msg=rabbitmq connected exchange=%s", r.config.Exchange)
		go r.handleReconnection(r.connection)
		return nil
	}

	return fmt.Errorf("connect to rabbitmq: %w", err)
}

func (r *RabbitMQClient) handleReconnection(conn *amqp.Connection) {
	notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))
	err, ok := <-notifyClose
	if !ok {
		return
	}

	r.mu.RLock()
	closing := r.isClosing
	r.mu.RUnlock()
	if closing {
		return
	}

	log.Printf("level=warn msg=rabbitmq connection lost, reconnecting err=%v", err)
	time.Sleep(r.config.RetryDelay)
	if reconnectErr := r.Connect(); reconnectErr != nil {
		log.Printf("level=error msg=rabbitmq reconnect failed err=%v", reconnectErr)
	}
}

func (r *RabbitMQClient) Channel() *amqp.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channel
}

func (r *RabbitMQClient) Exchange() string {
	return r.config.Exchange
}

func (r *RabbitMQClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isClosing {
		return nil
	}
	r.isClosing = true

	var closeErr error
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			closeErr = fmt.Errorf("channel close: %w", err)
		}
	}
	if r.connection != nil {
		if err := r.connection.Close(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("connection close: %w", err)
		}
	}
	if closeErr == nil {
		log.Println("level=info msg=rabbitmq connection closed")
	}
	return closeErr
}

func (r *RabbitMQClient) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connection != nil && !r.connection.IsClosed()
}
