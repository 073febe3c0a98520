package amazonads

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/adlumen/amzads/internal/core/domain"
	"github.com/adlumen/amzads/internal/core/ports/driven"
	"github.com/adlumen/amzads/internal/logger"
)

// Connector extracts one advertising account's data stream by stream.
// Streams run sequentially; within a stream, pagination and report polling
// are blocking loops with no concurrent in-flight requests.
type Connector struct {
	cfg     *Config
	client  *Client
	reports *ReportJobClient

	mu     sync.Mutex
	closed bool
}

// New creates a connector for the given account config and token provider.
func New(cfg *Config, tokens driven.TokenProvider) *Connector {
	client := NewClient(cfg, tokens)
	return &Connector{
		cfg:     cfg,
		client:  client,
		reports: NewReportJobClient(client),
	}
}

// Validate checks credentials by forcing a token refresh.
func (c *Connector) Validate(ctx context.Context) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	if _, err := c.client.tokens.GetToken(ctx); err != nil {
		return err
	}
	return nil
}

// Sync extracts one stream to completion. Records arrive on the returned
// channel, which is closed at end of stream; the error channel carries the
// final outcome. Each record passes through the field projection before
// emission. Parent carries scoping keys for dependent streams and may be
// nil.
func (c *Connector) Sync(
	ctx context.Context, stream *Stream, parent ParentContext, fields []string,
) (records <-chan domain.Record, errs <-chan error) {
	recordsChan := make(chan domain.Record)
	errsChan := make(chan error, 1)

	go func() {
		defer close(recordsChan)
		defer close(errsChan)
		errsChan <- c.runSync(ctx, stream, parent, fields, recordsChan)
	}()

	return recordsChan, errsChan
}

// runSync dispatches on the stream's access pattern.
func (c *Connector) runSync(
	ctx context.Context,
	stream *Stream,
	parent ParentContext,
	fields []string,
	out chan<- domain.Record,
) error {
	if err := c.checkClosed(); err != nil {
		return err
	}

	switch stream.Kind {
	case KindList:
		return c.syncList(ctx, stream, parent, fields, out)
	case KindReport:
		return c.syncReport(ctx, stream, fields, out)
	default:
		return fmt.Errorf("%w: %q has kind %q", domain.ErrUnknownStream, stream.Name, stream.Kind)
	}
}

// syncList pages through a list endpoint until the paginator reports the
// final page. A fresh cursor starts at offset 0 for every sync.
func (c *Connector) syncList(
	ctx context.Context,
	stream *Stream,
	parent ParentContext,
	fields []string,
	out chan<- domain.Record,
) error {
	logger.Debug("amazonads: syncing list stream %s", stream.Name)

	cursor := NewPageCursor(c.cfg.PageSize)
	pages := 0

	for cursor != nil {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := json.Marshal(stream.BuildBody(c.cfg, cursor, parent))
		if err != nil {
			return fmt.Errorf("build %s request: %w", stream.Name, err)
		}

		resp, err := c.client.Do(ctx, &Request{
			Method:    stream.Method,
			Path:      stream.Path,
			MediaType: stream.MediaType,
			Body:      body,
		})
		if err != nil {
			return fmt.Errorf("list %s: %w", stream.Name, err)
		}
		pages++

		for _, row := range gjson.GetBytes(resp.Body, stream.RecordsPath).Array() {
			rec := domain.NewRecord([]byte(row.Raw))
			if err := c.emit(ctx, out, rec.Project(fields)); err != nil {
				return err
			}
		}

		cursor = NextPage(resp.Body, cursor)
	}

	logger.Debug("amazonads: stream %s finished after %d pages", stream.Name, pages)
	return nil
}

// syncReport runs the report pipeline and emits the decoded records once.
func (c *Connector) syncReport(
	ctx context.Context, stream *Stream, fields []string, out chan<- domain.Record,
) error {
	logger.Debug("amazonads: syncing report stream %s", stream.Name)

	records, err := c.reports.Run(ctx, stream, c.cfg)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if err := c.emit(ctx, out, rec.Project(fields)); err != nil {
			return err
		}
	}
	return nil
}

// emit sends a record or returns on context cancellation.
func (c *Connector) emit(ctx context.Context, out chan<- domain.Record, rec domain.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- rec:
		return nil
	}
}

// checkClosed returns an error if the connector is closed.
func (c *Connector) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrConnectorClosed
	}
	return nil
}

// Close releases the connector. Subsequent syncs fail.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
