// Program chainrelayd runs the HTTP-to-bus JSON-RPC gateway: it accepts
// JSON-RPC 2.0 requests over HTTP, publishes each onto the in-process bus,
// and replies once a correlated response arrives or the publish timeout
// elapses.
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("chainrelayd: %v", err)
	}
}
