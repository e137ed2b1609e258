// Package player replays solver output as a timed, cancelable overlay.
//
// A [Player] owns at most one [Run]. Play validates the sequences, cancels
// whatever run is active and schedules the first tick; every tick applies one
// mark and schedules the next, so the marks of one run are strictly ordered:
//
//	IDLE -> PLAYING_VISITED -> PLAYING_PATH -> IDLE (complete)
//	PLAYING_* -> IDLE (cancelled)      on Cancel or a newer Play
//
// Timing goes through a [Scheduler]. [RealScheduler] uses the wall clock;
// [ManualScheduler] is a virtual clock for deterministic replay and export.
//
// # Thread Safety
//
// Player is safe for concurrent use. Ticks check the run-invalidation flag
// under the same lock that Cancel and Play take, so a stale tick never
// paints.
package player
