package wsref

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wiretuner/engine/internal/collab"
	"wiretuner/engine/internal/ot"
)

func TestRoundTripOperationSubmitToBroadcast(t *testing.T) {
	received := make(chan collab.Envelope, 1)
	handler := NewHandler(HandlerConfig{})
	handler.OnMessage = func(conn *Conn, env collab.Envelope) {
		received <- env
		if env.Type == collab.TypeOperationSubmit {
			broadcast := collab.Envelope{
				Type: collab.TypeOperationBroadcast,
				OperationBroadcast: &collab.OperationBroadcast{
					Op:             env.OperationSubmit.Op,
					ServerSequence: 1,
				},
			}
			if err := conn.Send(broadcast); err != nil {
				t.Errorf("server send: %v", err)
			}
		}
	}

	server := httptest.NewServer(handler)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, err := DialClient(url, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	submit := collab.Envelope{
		Type: collab.TypeOperationSubmit,
		OperationSubmit: &collab.OperationSubmit{
			Op:                 ot.Operation{ID: "op-1", Kind: ot.KindMove, UserID: "alice"},
			ClientSequence:     1,
			BaseServerSequence: 0,
		},
	}
	if err := client.Send(submit); err != nil {
		t.Fatalf("client send: %v", err)
	}

	select {
	case env := <-received:
		if env.Type != collab.TypeOperationSubmit {
			t.Fatalf("unexpected server-received type: %v", env.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server to receive submit")
	}

	reply, err := client.Receive()
	if err != nil {
		t.Fatalf("client receive: %v", err)
	}
	if reply.Type != collab.TypeOperationBroadcast {
		t.Fatalf("expected operationBroadcast, got %+v", reply)
	}
	if reply.OperationBroadcast.Op.ID != "op-1" {
		t.Fatalf("unexpected broadcast op: %+v", reply.OperationBroadcast.Op)
	}
}

func TestMalformedFrameReturnsErrorMessage(t *testing.T) {
	handler := NewHandler(HandlerConfig{})
	server := httptest.NewServer(handler)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, err := DialClient(url, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if err := client.send(`{"type":"bogus"}`); err != nil {
		t.Fatalf("send raw: %v", err)
	}

	reply, err := client.Receive()
	if err != nil {
		t.Fatalf("client receive: %v", err)
	}
	if reply.Type != collab.TypeError {
		t.Fatalf("expected error reply, got %+v", reply)
	}
}
