// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// The package itself holds only what the concrete services share: the
// ServiceError wrapper their failures are reported through. The services
// live in subpackages, one per domain area:
//
//   - progress: keyword enrollment and ongoing mastery tracking through the
//     level-table scheduler, due queries, integrity checks, and the accuracy
//     ranking snapshot.
//   - review: the review-session lifecycle, from building sessions out of
//     due keywords to recording answers through the SM-2 scheduler and
//     producing completion summaries.
//   - rescue: the per-user rescue-mode state machine with its configured
//     thresholds, score bonus, and event-log-replayed statistics.
//   - auth: device registration tokens (JWT issue and verification).
//
// Services receive dependencies through constructor injection: repository
// interfaces from internal/store, scheduling strategies from
// internal/domain/srs, the event emitter, and configuration policy. They
// never depend on concrete infrastructure.
//
// Error handling follows one convention across the subpackages: expected
// conditions are package-level sentinels checked with errors.Is, unexpected
// failures are wrapped in a ServiceError carrying the operation name, and
// mutating calls against unknown IDs degrade to logged no-ops rather than
// errors so a client holding a stale ID cannot wedge itself.
package service
