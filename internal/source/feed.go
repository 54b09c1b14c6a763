package source

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/openretail/storewatch/internal/event"
	"github.com/openretail/storewatch/internal/metrics"
)

// Feed is the live sensor connection: a banner line followed by one JSON
// record per line, each tagged with its dataset.
type Feed struct {
	conn net.Conn
}

// DialFeed connects to the sensor simulator. An unreachable feed is fatal
// to the run.
func DialFeed(ctx context.Context, addr string, timeout time.Duration) (*Feed, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect feed %s: %w", addr, err)
	}
	return &Feed{conn: conn}, nil
}

// Run consumes the feed until it closes or ctx is cancelled, invoking
// handle for every well-formed record in arrival order. Undecodable lines
// and malformed records are dropped, logged, and counted; they never stop
// the feed.
func (f *Feed) Run(ctx context.Context, handle func(event.Event)) error {
	// Cancellation unblocks the reader by closing the connection.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			f.conn.Close()
		case <-done:
		}
	}()

	sc := bufio.NewScanner(f.conn)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	// The first line is a banner; read and discard it.
	if sc.Scan() {
		slog.Info("feed connected", "banner", sc.Text())
	}

	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw event.RawRecord
		if err := json.Unmarshal(line, &raw); err != nil {
			metrics.RecordsRejected.WithLabelValues("decode").Inc()
			slog.Warn("dropping undecodable feed line", "err", err)
			continue
		}
		src, ok := event.SourceFromDataset(raw.Dataset)
		if !ok {
			metrics.RecordsRejected.WithLabelValues("decode").Inc()
			slog.Warn("dropping record with unknown dataset", "dataset", raw.Dataset)
			continue
		}
		ev, err := event.Normalize(src, raw)
		if err != nil {
			metrics.RecordsRejected.WithLabelValues("malformed").Inc()
			slog.Warn("dropping malformed feed record", "err", err)
			continue
		}
		handle(ev)
	}

	if err := sc.Err(); err != nil {
		if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
			return nil
		}
		return fmt.Errorf("read feed: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (f *Feed) Close() error {
	return f.conn.Close()
}
