package events

import (
	"testing"

	"wiretuner/engine/internal/geometry"
)

func sampleEvent() Event {
	return Event{
		Envelope: Envelope{
			EventID:       "evt-1",
			Timestamp:     1730000000000,
			EventType:     TypeAddAnchor,
			EventSequence: 42,
			DocumentID:    "doc-1",
		},
		AddAnchor: &AddAnchorPayload{
			PathID:     "path-001",
			Position:   geometry.Point{X: 100, Y: 200},
			AnchorType: geometry.AnchorLine,
		},
	}
}

func TestEventValidateExactlyOnePayload(t *testing.T) {
	e := sampleEvent()
	if !e.Validate() {
		t.Fatal("expected single-payload event to validate")
	}

	e.CreatePath = &CreatePathPayload{PathID: "x", LayerID: "y"}
	if e.Validate() {
		t.Fatal("expected event with two payload fields to fail validation")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	e := sampleEvent()
	data, err := Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.AddAnchor == nil || decoded.AddAnchor.PathID != "path-001" {
		t.Fatalf("unexpected round-trip result: %+v", decoded)
	}

	again, err := Marshal(decoded)
	if err != nil {
		t.Fatalf("remarshal: %v", err)
	}
	if string(again) != string(data) {
		t.Fatalf("expected byte-identical round-trip:\n%s\nvs\n%s", data, again)
	}
}

func TestAllTypesMatchesEventFields(t *testing.T) {
	types := AllTypes()
	seen := make(map[Type]bool, len(types))
	for _, ty := range types {
		if seen[ty] {
			t.Fatalf("duplicate type in AllTypes: %s", ty)
		}
		seen[ty] = true
	}
	if len(types) != 22 {
		t.Fatalf("expected 22 event types, got %d", len(types))
	}
}

func TestIsContinuous(t *testing.T) {
	e := Event{Envelope: Envelope{EventType: TypeMoveAnchor}}
	if !e.IsContinuous() {
		t.Fatal("expected MoveAnchor to be continuous")
	}
	e.EventType = TypeCreatePath
	if e.IsContinuous() {
		t.Fatal("expected CreatePath to be discrete")
	}
}

func TestValidSampling(t *testing.T) {
	valid := SamplingIntervalMs
	e := Envelope{SamplingIntervalMs: &valid}
	if !e.ValidSampling() {
		t.Fatal("expected 50ms sampling interval to be valid")
	}
	bad := 75
	e.SamplingIntervalMs = &bad
	if e.ValidSampling() {
		t.Fatal("expected non-50ms sampling interval to be invalid")
	}
}

func TestCanonicalizeSortsKeysAndIntegralFloats(t *testing.T) {
	data := []byte(`{"b":1.0,"a":{"z":2,"y":3.5}}`)
	canon, err := MarshalCanonical(data)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	want := `{"a":{"y":3.5,"z":2},"b":1}`
	if string(canon) != want {
		t.Fatalf("expected %s, got %s", want, canon)
	}
}

