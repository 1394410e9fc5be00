package collab

import (
	"testing"

	"wiretuner/engine/internal/ot"
)

func TestMarshalUnmarshalOperationSubmitRoundTrip(t *testing.T) {
	env := Envelope{
		Type: TypeOperationSubmit,
		OperationSubmit: &OperationSubmit{
			Op:                 ot.Operation{ID: "op-1", Kind: ot.KindMove, UserID: "alice"},
			ClientSequence:     1,
			BaseServerSequence: 41,
		},
	}

	data, err := Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != TypeOperationSubmit || got.OperationSubmit == nil {
		t.Fatalf("unexpected envelope: %+v", got)
	}
	if got.OperationSubmit.Op.ID != "op-1" {
		t.Fatalf("unexpected op: %+v", got.OperationSubmit.Op)
	}
}

func TestValidateRejectsMismatchedType(t *testing.T) {
	env := Envelope{
		Type:     TypePresence,
		OperationAck: &OperationAck{OpID: "op-1", ServerSequence: 1},
	}
	if err := env.Validate(); err == nil {
		t.Fatalf("expected validation error for mismatched payload")
	}
}

func TestValidateRejectsMultiplePayloads(t *testing.T) {
	env := Envelope{
		Type:     TypePresence,
		Presence: &Presence{UserID: "alice", SessionID: "sess-1"},
		Resync:   &Resync{},
	}
	if err := env.Validate(); err == nil {
		t.Fatalf("expected validation error for multiple payloads")
	}
}

func TestValidateRejectsUnknownType(t *testing.T) {
	env := Envelope{Type: "bogus"}
	if err := env.Validate(); err == nil {
		t.Fatalf("expected validation error for unknown type")
	}
}

func TestMarshalErrorMessage(t *testing.T) {
	env := Envelope{Type: TypeError, Error: &Error{Code: "rate_limited", Message: "too many ops"}}
	data, err := Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Error == nil || got.Error.Code != "rate_limited" {
		t.Fatalf("unexpected error payload: %+v", got.Error)
	}
}
