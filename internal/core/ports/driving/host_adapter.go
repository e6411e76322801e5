package driving

import "context"

// HostAdapter is the single entry point a class-loading host calls into.
// It implements the two-phase probe/transform contract (spec §4.6):
//
//   - classData is nil or empty (probe mode): the return value is nil to
//     mean "no mixin will touch this class", or a non-nil empty slice to
//     mean "at least one mixin applies, parse and call again with bytes".
//   - classData is non-empty (transform mode): the return value is nil to
//     mean "no change", or a non-empty slice to mean "use this replacement".
//
// No error ever crosses this boundary: any unexpected failure anywhere in
// the pipeline maps to nil (fail-safe).
type HostAdapter interface {
	ModifyClass(ctx context.Context, className string, classData []byte) []byte
}

// AdminService exposes read/control operations around the engine for the
// operational shell (admin HTTP API, rescan worker) — it is not part of the
// host-facing contract above.
type AdminService interface {
	// Rescan re-invokes the mixin scanner and replaces the stored mixin list.
	Rescan(ctx context.Context) error

	// Stats reports mixin counts per kind and per-module failure counts
	// accumulated since the engine was created; a rescan does not reset them.
	Stats() EngineStats
}

// EngineStats is a snapshot of the mixin index and recent transform activity.
type EngineStats struct {
	TotalMixins      int
	ClassMixins      int
	FieldMixins      int
	MethodMixins     int
	MethodCodeMixins int
	LastRebuildUnix  int64
	ModuleFailures   map[string]int
}
