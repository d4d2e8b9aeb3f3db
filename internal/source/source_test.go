package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestResolveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.txt")

	if err := os.WriteFile(path, []byte("rm -rf /\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver()

	for _, ref := range []string{path, "file://" + path} {
		text, err := r.Resolve(context.Background(), ref)

		if err != nil {
			t.Fatalf("resolve %s: %v", ref, err)
		}

		if text != "rm -rf /\n" {
			t.Errorf("resolve %s = %q", ref, text)
		}
	}
}

func TestResolveHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/code.txt" {
			http.NotFound(w, req)
			return
		}
		w.Write([]byte("<script>alert(1)</script>"))
	}))
	defer srv.Close()

	r := NewResolver()

	text, err := r.Resolve(context.Background(), srv.URL+"/code.txt")

	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if text != "<script>alert(1)</script>" {
		t.Errorf("text = %q", text)
	}

	if _, err := r.Resolve(context.Background(), srv.URL+"/missing"); !errors.Is(err, ErrBadStatus) {
		t.Errorf("err = %v, want ErrBadStatus", err)
	}
}

func TestResolveWebsocket(t *testing.T) {
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)

		if err != nil {
			return
		}

		defer conn.Close()

		for _, chunk := range []string{"line one\n", "line two\n"} {
			conn.WriteMessage(websocket.TextMessage, []byte(chunk))
		}

		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
	}))
	defer srv.Close()

	ref := "ws" + strings.TrimPrefix(srv.URL, "http")

	text, err := NewResolver().Resolve(context.Background(), ref)

	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if text != "line one\nline two\n" {
		t.Errorf("text = %q", text)
	}
}

func TestResolveUnsupportedScheme(t *testing.T) {
	_, err := NewResolver().Resolve(context.Background(), "gopher://example.com/0")

	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("err = %v, want ErrUnsupportedScheme", err)
	}
}

func TestResolveSizeLimit(t *testing.T) {
	dir := t.TempDir()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(strings.TrimPrefix(req.URL.Path, "/")))
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		payload string
		tooBig  bool
	}{
		{"under", "abcdef", false},
		{"exact", "abcdefgh", false},
		{"over", "abcdefghij", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(dir, test.name+".txt")

			if err := os.WriteFile(path, []byte(test.payload), 0644); err != nil {
				t.Fatal(err)
			}

			r := NewResolver()
			r.maxSize = 8

			for _, ref := range []string{path, srv.URL + "/" + test.payload} {
				text, err := r.Resolve(context.Background(), ref)

				if test.tooBig {
					if !errors.Is(err, ErrTooLarge) {
						t.Errorf("resolve %s: err = %v, want ErrTooLarge", ref, err)
					}
					continue
				}

				if err != nil || text != test.payload {
					t.Errorf("resolve %s = %q, %v", ref, text, err)
				}
			}
		})
	}
}

func TestResolveWebsocketHonoursContext(t *testing.T) {
	upgrader := websocket.Upgrader{}
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)

		if err != nil {
			return
		}

		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte("partial"))
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	ref := "ws" + strings.TrimPrefix(srv.URL, "http")
	start := time.Now()

	_, err := NewResolver().Resolve(ctx, ref)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("resolve returned after %s, want it bounded by the context", elapsed)
	}
}
