// Package flock provides cross-platform file locking utilities.
//
// Concurrent subproject pipelines share the metadata store directory tree and
// the artifact registry file, so every read-modify-write on those files runs
// under an exclusive lock. The platform primitives (Exclusive, Unlock) work
// on both Unix and Windows; Acquire layers a context-aware retry loop with a
// deadline on top of them.
//
// Usage:
//
//	lock, err := flock.Acquire(ctx, path+".lock", timeout, interval)
//	if err != nil {
//	    // Lock not acquired within the timeout
//	}
//	defer lock.Release()
package flock
