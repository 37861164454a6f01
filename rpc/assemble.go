package rpc

import "encoding/json"

// Assemble shapes the final JSON-RPC reply body from a set of per-element
// Outputs, following spec.md §4.E: a Single request yields its lone Output
// verbatim; a Batch yields a JSON array of Outputs in original element
// order, with notifications omitted (spec.md §9, the "skip them" resolution
// of the Open Question about notifications inside batches).
//
// If outputs is empty (every element was a notification), Assemble returns
// (nil, false): the caller should send an empty 200 response rather than an
// empty array.
func Assemble(batch bool, outputs []*Output) ([]byte, bool, error) {
	if len(outputs) == 0 {
		return nil, false, nil
	}
	if !batch && len(outputs) == 1 {
		bits, err := json.Marshal(outputs[0])
		return bits, true, err
	}
	bits, err := json.Marshal(outputs)
	return bits, true, err
}
