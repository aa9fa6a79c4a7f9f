package pipeline

// ResolveRefspec returns the ref to check out, taking candidates in
// priority order: an explicit operator override, the value a previous run
// persisted to the metadata store, and the computed remote-tracking default.
// The first non-empty candidate wins.
//
// All three candidates are passed explicitly so the resolution order is
// visible at the call site instead of buried in ambient property lookups.
func ResolveRefspec(override, persisted, fallback string) string {
	if override != "" {
		return override
	}
	if persisted != "" {
		return persisted
	}
	return fallback
}

// DefaultRefspec is the remote-tracking branch used when nothing pins the
// checkout: "{remote}/{branch}". A fetch moves this ref, so two runs of the
// same subproject can build different commits unless a persisted or
// overridden refspec pins them.
func DefaultRefspec(remoteName, branch string) string {
	return remoteName + "/" + branch
}
