// Package nats connects the crawler/api side to the indexing worker via a
// single article-crawled subject.
package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/resilience"
)

const workerQueueGroup = "indexers"

type Queue struct {
	conn    *nats.Conn
	subject string
	exec    *resilience.Executor
	logger  *slog.Logger
}

type Options struct {
	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	MaxReconnects  int
}

func New(url, subject string, policy resilience.Policy, logger *slog.Logger) (*Queue, error) {
	return NewWithOptions(url, subject, policy, logger, Options{})
}

func NewWithOptions(url, subject string, policy resilience.Policy, logger *slog.Logger, options Options) (*Queue, error) {
	if logger == nil {
		logger = slog.Default()
	}
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}

	conn, err := nats.Connect(
		url,
		nats.Name("legal-qa-assistant"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:    conn,
		subject: subject,
		exec:    resilience.NewExecutor(policy, classifyNATSError),
		logger:  logger,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishArticleCrawled(ctx context.Context, articleID string) error {
	err := q.exec.Execute(ctx, "nats.publish", func(context.Context) error {
		if err := q.conn.Publish(q.subject, []byte(articleID)); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	})
	return wrapTemporaryIfNeeded(err)
}

// SubscribeArticleCrawled blocks until ctx is cancelled, then drains the
// subscription so in-flight messages finish.
func (q *Queue) SubscribeArticleCrawled(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, workerQueueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, string(msg.Data)); err != nil {
			q.logger.Error("article handler failed", "article_id", string(msg.Data), "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
