// Package rpc implements JSON-RPC 2.0 request parsing, validation, and
// reply assembly for the gateway's HTTP front door.
//
// The wire-message decoding here is adapted from the teacher package's
// jmessage/jmessages type (json.go): a message is first unmarshaled field by
// field into a map so that extra/invalid fields can be reported precisely,
// and batches are detected by inspecting the first non-whitespace byte
// rather than relying on json.Unmarshal's own batch/array disambiguation.
package rpc

import (
	"bytes"
	"encoding/json"

	"github.com/chainbourne/chainrelay/code"
)

// Version is the only JSON-RPC protocol version this gateway accepts.
const Version = "2.0"

// message is the transmission form of one JSON-RPC request object, valid or
// not. Only fields relevant to requests are tracked; response-shaped fields
// are rejected as a mixed request/reply object.
type message struct {
	v     string          // protocol version as given
	id    json.RawMessage // the "id" value verbatim, including literal null
	hasID bool            // true if the "id" key was present at all

	method string
	params json.RawMessage

	isResponseShaped bool // had "result" or "error" keys

	batch bool   // true if this message arrived inside a JSON array
	err   *Error // set if this message is invalid
}

// messages is either a single request object or a batch (JSON array) of
// them. Decoding defers validation of individual elements to the caller;
// the only immediate failure mode is a body that is not intact JSON. Any
// other top-level value is decoded as a single element that then fails
// validation.
type messages []*message

// parse decodes data as either a lone request object or a batch array. It
// reports an error only when data is not intact JSON; per-element validity
// is recorded on each message's err field instead, mirroring the teacher's
// parseJSON split between "unreadable" and "invalid."
func parse(data []byte) (messages, error) {
	var raws []json.RawMessage
	var batch bool
	if firstByte(data) != '[' {
		raws = []json.RawMessage{nil}
		if err := json.Unmarshal(data, &raws[0]); err != nil {
			return nil, errInvalidRequest
		}
	} else if err := json.Unmarshal(data, &raws); err != nil {
		return nil, errInvalidRequest
	} else {
		batch = true
	}

	out := make(messages, len(raws))
	for i, raw := range raws {
		m := new(message)
		m.decode(raw)
		m.batch = batch
		out[i] = m
	}
	return out, nil
}

func (m *message) fail(c code.Code, msg string) {
	if m.err == nil {
		m.err = &Error{Code: c, Message: msg}
	}
}

func (m *message) decode(data []byte) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		m.fail(code.ParseError, "request is not a JSON object")
		return
	}

	var extra []string
	for key, val := range obj {
		switch key {
		case "jsonrpc":
			if json.Unmarshal(val, &m.v) != nil {
				m.fail(code.ParseError, "invalid version key")
			}
		case "id":
			if isValidID(val) {
				m.id = val
				m.hasID = true
			} else {
				m.fail(code.InvalidRequest, "invalid request id")
			}
		case "method":
			if json.Unmarshal(val, &m.method) != nil {
				m.fail(code.ParseError, "invalid method name")
			}
		case "params":
			if !isNull(val) {
				m.params = val
			}
			if fb := firstByte(m.params); fb != 0 && fb != '[' && fb != '{' {
				m.fail(code.InvalidRequest, "params must be array or object")
			}
		case "result", "error":
			m.isResponseShaped = true
		default:
			extra = append(extra, key)
		}
	}

	if m.v != Version {
		m.fail(code.InvalidRequest, "invalid or missing version marker")
	}
	// An absent or empty method name is not rejected here: it is passed
	// through to the caller, which resolves it against the method registry
	// and reports "method not found" rather than "invalid request" — this
	// is what lets a request with no method key at all surface as a
	// routing failure instead of a parse failure.
	if m.isResponseShaped {
		m.fail(code.InvalidRequest, "mixed request and reply fields")
	}
	if m.err == nil && len(extra) != 0 {
		m.err = Errorf(code.InvalidRequest, "extra fields in request").WithData(extra)
	}
}

// isNotification reports whether m carries no id at all. Per JSON-RPC 2.0,
// only the absence of the "id" member makes a request a notification; an
// explicit "id":null is a (discouraged but legal) request id and still
// requires a reply.
func (m *message) isNotification() bool { return !m.hasID }

// isValidID reports whether v is a syntactically legal JSON-RPC id: absent,
// null, a string, or a number.
func isValidID(v json.RawMessage) bool {
	if len(v) == 0 || isNull(v) {
		return true
	}
	return v[0] == '"' || v[0] == '-' || (v[0] >= '0' && v[0] <= '9')
}

func isNull(v json.RawMessage) bool {
	return len(v) == 4 && v[0] == 'n' && v[1] == 'u' && v[2] == 'l' && v[3] == 'l'
}

func firstByte(data []byte) byte {
	clean := bytes.TrimSpace(data)
	if len(clean) == 0 {
		return 0
	}
	return clean[0]
}
