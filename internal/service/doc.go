// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and stores
// (defined in internal/store) to fulfill application features.
//
// The two central services are:
//
//   - PracticeService: worksheet generation (adaptive item selection, mix
//     ratios, the de-duplicating over-fetch) and session lifecycle
//     operations.
//   - GradingService (in the grading subpackage): photo and manual grading,
//     provider fallback, and the human confirmation step that commits
//     results to mastery statistics.
//
// Services receive dependencies through constructor injection, apply
// transactional boundaries when operations span multiple stores, and
// translate store errors to application-level errors the API layer can map
// to HTTP status codes.
package service
