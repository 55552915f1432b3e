// Package source opens ontology and annotation inputs: local files or
// HTTP(S) URLs, transparently decompressing .gz and .zst content.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// DefaultTimeout bounds each wait of a remote fetch when Options.Timeout
// is zero.
const DefaultTimeout = 5 * time.Second

// ErrHTTPStatus is returned when a remote fetch answers with a non-2xx status.
var ErrHTTPStatus = errors.New("unexpected http status")

// ErrTimeout is returned when a remote fetch waits longer than the timeout
// for headers or for the next chunk of the body.
var ErrTimeout = fmt.Errorf("remote fetch stalled: %w", context.DeadlineExceeded)

// Options tune Open.
type Options struct {
	Timeout time.Duration
	Client  *http.Client
}

// IsRemote reports whether location is fetched over HTTP.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Open returns a reader over the decompressed content at location.
// Closing it releases every underlying resource.
func Open(ctx context.Context, location string, opts Options) (io.ReadCloser, error) {
	var (
		raw io.ReadCloser
		err error
	)
	if IsRemote(location) {
		raw, err = fetch(ctx, location, opts)
	} else {
		raw, err = os.Open(location)
	}
	if err != nil {
		return nil, err
	}

	name := strings.ToLower(location)
	if i := strings.IndexAny(name, "?#"); i >= 0 && IsRemote(location) {
		name = name[:i]
	}
	switch {
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(raw)
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("open %s: gzip: %w", location, err)
		}
		return &stack{Reader: zr, closers: []io.Closer{zr, raw}}, nil
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		zr, err := zstd.NewReader(raw)
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("open %s: zstd: %w", location, err)
		}
		return &stack{Reader: zr, closers: []io.Closer{zstdCloser{zr}, raw}}, nil
	}
	return raw, nil
}

func fetch(ctx context.Context, location string, opts Options) (io.ReadCloser, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	// The timeout bounds waiting for headers and each body read, not the
	// whole transfer.
	ctx, cancel := context.WithCancelCause(ctx)
	timer := time.AfterFunc(timeout, func() { cancel(ErrTimeout) })
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		timer.Stop()
		cancel(nil)
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}
	resp, err := client.Do(req)
	timer.Stop()
	if err != nil {
		err = withCause(ctx, err)
		cancel(nil)
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		cancel(nil)
		return nil, fmt.Errorf("fetch %s: %w: %s", location, ErrHTTPStatus, resp.Status)
	}
	body := &idleReader{ctx: ctx, r: resp.Body, timer: timer, timeout: timeout}
	return &stack{Reader: body, closers: []io.Closer{resp.Body, cancelCloser(cancel)}}, nil
}

// idleReader arms the timer only while a Read is blocked.
type idleReader struct {
	ctx     context.Context
	r       io.Reader
	timer   *time.Timer
	timeout time.Duration
}

func (d *idleReader) Read(p []byte) (int, error) {
	d.timer.Reset(d.timeout)
	n, err := d.r.Read(p)
	d.timer.Stop()
	if err != nil && err != io.EOF {
		err = withCause(d.ctx, err)
	}
	return n, err
}

// withCause attaches ErrTimeout when the timer cancelled ctx.
func withCause(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); errors.Is(cause, ErrTimeout) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%w: %w", cause, err)
	}
	return err
}

// stack closes its layers innermost first.
type stack struct {
	io.Reader
	closers []io.Closer
}

func (s *stack) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type zstdCloser struct{ d *zstd.Decoder }

func (z zstdCloser) Close() error {
	z.d.Close()
	return nil
}

type cancelCloser context.CancelCauseFunc

func (c cancelCloser) Close() error {
	c(nil)
	return nil
}
