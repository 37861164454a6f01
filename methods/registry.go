// Package methods maps JSON-RPC method names onto the bus topics that carry
// them upstream to the node. It deliberately knows nothing about wire
// encoding, correlation, or timeouts — it is a lookup table, nothing more.
package methods

// Descriptor describes how a single JSON-RPC method is routed onto the bus.
type Descriptor struct {
	// Name is the JSON-RPC method name as it appears on the wire.
	Name string

	// Topic is the bus topic (queue/exchange routing key) the translated
	// request is published to.
	Topic string
}

// Registry resolves JSON-RPC method names to their bus Descriptor. The zero
// Registry has no entries; use New or NewDefaultRegistry to build one.
type Registry struct {
	byName map[string]Descriptor
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{byName: make(map[string]Descriptor)}
}

// Add registers d under d.Name, overwriting any existing entry for that
// name. It returns r so calls can be chained.
func (r *Registry) Add(d Descriptor) *Registry {
	r.byName[d.Name] = d
	return r
}

// Resolve looks up the Descriptor for method. The second return value is
// false if no method of that name is registered, which the caller reports
// to the client as a JSON-RPC "method not found" error without ever
// publishing anything upstream.
func (r *Registry) Resolve(method string) (Descriptor, bool) {
	d, ok := r.byName[method]
	return d, ok
}

// Len reports the number of registered methods.
func (r *Registry) Len() int { return len(r.byName) }

// NewDefaultRegistry returns a Registry seeded with the illustrative catalog
// of node RPC methods named in the gateway's operator documentation: read
// methods that query chain state, and the single write method that submits
// a signed transaction.
func NewDefaultRegistry() *Registry {
	return New().
		Add(Descriptor{Name: "peerCount", Topic: "node.peer_count"}).
		Add(Descriptor{Name: "blockNumber", Topic: "node.block_number"}).
		Add(Descriptor{Name: "sendRawTransaction", Topic: "node.send_raw_transaction"}).
		Add(Descriptor{Name: "getTransactionReceipt", Topic: "node.get_transaction_receipt"}).
		Add(Descriptor{Name: "getBlockByNumber", Topic: "node.get_block_by_number"})
}
