package netutil

import (
	"context"
	"testing"
)

func TestListenBindsEphemeralPort(t *testing.T) {
	ln, err := Listen(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	if ln.Addr() == nil {
		t.Fatal("expected a bound address")
	}
}

func TestListenAllowsImmediateRebind(t *testing.T) {
	ln, err := Listen(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ln2, err := Listen(context.Background(), addr)
	if err != nil {
		t.Fatalf("rebind Listen: %v", err)
	}
	defer ln2.Close()
}
