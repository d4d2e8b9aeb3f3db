package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported source scheme")
	ErrBadStatus         = errors.New("unexpected response status")
	ErrTooLarge          = errors.New("source exceeds size limit")
)

const defaultMaxSize = 4 << 20

// Resolver turns a file reference into text. References are local paths,
// http(s) URLs, or ws(s) URLs whose text messages are concatenated until the
// server closes the connection.
type Resolver struct {
	client  *http.Client
	dialer  *websocket.Dialer
	maxSize int64
}

func NewResolver() *Resolver {
	return &Resolver{
		client:  &http.Client{Timeout: 10 * time.Second},
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		maxSize: defaultMaxSize,
	}
}

func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	u, err := url.Parse(ref)

	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return r.readFile(ref)
	}

	switch u.Scheme {
	case "file":
		return r.readFile(u.Path)
	case "http", "https":
		return r.get(ctx, ref)
	case "ws", "wss":
		return r.stream(ctx, ref)
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
}

func (r *Resolver) readFile(path string) (string, error) {
	file, err := os.Open(path)

	if err != nil {
		return "", err
	}

	defer file.Close()

	return r.readAll(file, path)
}

// readAll reads at most maxSize bytes and fails instead of truncating.
func (r *Resolver) readAll(src io.Reader, ref string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(src, r.maxSize+1))

	if err != nil {
		return "", err
	}

	if int64(len(data)) > r.maxSize {
		return "", fmt.Errorf("%w: %s is over %d bytes", ErrTooLarge, ref, r.maxSize)
	}

	return string(data), nil
}

func (r *Resolver) get(ctx context.Context, ref string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)

	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)

	if err != nil {
		return "", err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: GET %s: %s", ErrBadStatus, ref, resp.Status)
	}

	return r.readAll(resp.Body, ref)
}

func (r *Resolver) stream(ctx context.Context, ref string) (string, error) {
	conn, _, err := r.dialer.DialContext(ctx, ref, nil)

	if err != nil {
		return "", err
	}

	defer conn.Close()

	// unblocks ReadMessage when ctx ends before the server closes
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetReadLimit(r.maxSize)

	builder := &strings.Builder{}

	for {
		kind, data, err := conn.ReadMessage()

		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return builder.String(), nil
			}

			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", fmt.Errorf("stream %s: %w", ref, ctxErr)
			}

			return "", err
		}

		if kind != websocket.TextMessage {
			continue
		}

		builder.Write(data)

		if int64(builder.Len()) > r.maxSize {
			return "", fmt.Errorf("%w: %s is over %d bytes", ErrTooLarge, ref, r.maxSize)
		}
	}
}
