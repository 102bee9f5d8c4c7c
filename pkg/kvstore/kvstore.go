// Package kvstore holds the device-local key/value backends behind the
// cooldown gate.
package kvstore

import "context"

// Store is a string-by-key store. Get reports ok=false for a missing key.
//
// CompareAndSwap writes next only if the current value equals old, where an
// empty old also matches a missing key. It is atomic across every process
// sharing the same backing storage.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	CompareAndSwap(ctx context.Context, key, old, next string) (swapped bool, err error)
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
