package rpc

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chainbourne/chainrelay/code"
)

func TestParseSingle(t *testing.T) {
	body := []byte(`{"jsonrpc":"2.0","method":"peerCount","params":[],"id":74}`)
	p, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Batch {
		t.Fatalf("Batch = true, want false")
	}
	if len(p.Elements) != 1 {
		t.Fatalf("len(Elements) = %d, want 1", len(p.Elements))
	}
	el := p.Elements[0]
	if el.Err != nil {
		t.Fatalf("Err = %v, want nil", el.Err)
	}
	if el.Method != "peerCount" || string(el.ID) != "74" {
		t.Fatalf("got method=%q id=%s", el.Method, el.ID)
	}
}

func TestParseBatchPreservesOrder(t *testing.T) {
	body := []byte(`[
		{"jsonrpc":"2.0","method":"peerCount","params":[],"id":74},
		{"jsonrpc":"2.0","method":"peerCount","params":[],"id":75}
	]`)
	p, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.Batch {
		t.Fatalf("Batch = false, want true")
	}
	if len(p.Elements) != 2 {
		t.Fatalf("len(Elements) = %d, want 2", len(p.Elements))
	}

	gotIDs := make([]string, len(p.Elements))
	gotIdx := make([]int, len(p.Elements))
	for i, el := range p.Elements {
		gotIDs[i] = string(el.ID)
		gotIdx[i] = el.BatchIndex
	}
	if diff := cmp.Diff([]string{"74", "75"}, gotIDs); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1}, gotIdx); diff != "" {
		t.Errorf("batch indices mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyBatchIsInvalidRequest(t *testing.T) {
	p, err := Parse([]byte(`[]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Batch {
		t.Fatalf("Batch = true, want false (an empty array still renders as a single object)")
	}
	if len(p.Elements) != 1 || p.Elements[0].Err == nil {
		t.Fatalf("expected single invalid-request element, got %+v", p.Elements)
	}
	if p.Elements[0].Err.Code != code.InvalidRequest {
		t.Fatalf("Code = %v, want InvalidRequest", p.Elements[0].Err.Code)
	}
}

// TestEmptyBatchAssemblesToASingleObject confirms the fix survives end to
// end through Assemble: an empty batch array must render as a bare JSON
// object, not a one-element array, matching the JSON-RPC 2.0 specification's
// own worked example for this edge case.
func TestEmptyBatchAssemblesToASingleObject(t *testing.T) {
	p, err := Parse([]byte(`[]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out := NewError(p.Elements[0].ID, p.Elements[0].Err)
	bits, hasBody, err := Assemble(p.Batch, []*Output{out})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !hasBody {
		t.Fatal("hasBody = false, want true")
	}
	if len(bits) == 0 || bits[0] != '{' {
		t.Fatalf("Assemble output = %s, want a bare JSON object starting with '{'", bits)
	}
}

func TestParseMalformedTopLevelJSON(t *testing.T) {
	_, err := Parse([]byte(`not json`))
	if err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestParseMissingMethodPassesThroughForRegistryResolution(t *testing.T) {
	// No "method" key at all — this is the exact scenario 3 payload from
	// spec.md §8. Parse must not reject it outright: the empty method name
	// is left for the caller's registry lookup to report as "method not
	// found", not "invalid request".
	body := []byte(`{"jsonrpc":"2.0","id":null,"params":["0x000000000000000000000000000000000000000000000000000000000000000a"]}`)
	p, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	el := p.Elements[0]
	if el.Err != nil {
		t.Fatalf("Err = %v, want nil", el.Err)
	}
	if el.Method != "" {
		t.Fatalf("Method = %q, want empty", el.Method)
	}
}

func TestParseNotificationHasNoID(t *testing.T) {
	body := []byte(`{"jsonrpc":"2.0","method":"peerCount"}`)
	p, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.Elements[0].IsNotification() {
		t.Fatalf("expected notification")
	}
}

func TestParseExplicitNullIDIsNotANotification(t *testing.T) {
	// A request with "id":null is discouraged but legal JSON-RPC 2.0: only
	// an absent "id" member denotes a notification. spec.md §8 scenario 3
	// depends on this: a null id still receives an error reply.
	body := []byte(`{"jsonrpc":"2.0","method":"peerCount","id":null}`)
	p, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Elements[0].IsNotification() {
		t.Fatalf("explicit id:null must not be treated as a notification")
	}
}

func TestMethodNotFoundOutput(t *testing.T) {
	out := MethodNotFound(json.RawMessage("74"), "noSuchMethod")
	if out.Err().Code != code.MethodNotFound {
		t.Fatalf("Code = %v, want MethodNotFound", out.Err().Code)
	}
	bits, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded struct {
		Error struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(bits, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Error.Code != int(code.MethodNotFound) {
		t.Fatalf("encoded code = %d, want %d", decoded.Error.Code, code.MethodNotFound)
	}
}
