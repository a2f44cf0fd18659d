package wscarrier

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/netrelay/rudp/internal/baseenc"
)

func TestRoundTripsOverLoopback(t *testing.T) {
	serverGot := make(chan string, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		carrier, err := Serve(w, r, "client", nil)
		if err != nil {
			t.Error(err)
			return
		}
		carrier.OnEvent(func(peer, text string) { serverGot <- text })
		go carrier.ReadLoop()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	client, err := Dial(url, "server", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	payload := []byte("hello over the wire")
	if err := client.BroadcastToPeer("server", payload); err != nil {
		t.Fatal(err)
	}

	select {
	case text := <-serverGot:
		decoded, err := baseenc.Decode(text)
		if err != nil {
			t.Fatal(err)
		}
		if string(decoded) != string(payload) {
			t.Fatalf("got %q, want %q", decoded, payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server to receive the frame")
	}
}
