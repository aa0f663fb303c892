// Package services defines shared utilities consumed by the pipeline stage
// handlers and the provider CLI clients.
//
// Key responsibilities:
//   - Context helpers that stamp batch run IDs, folder names, and stage names
//     for logging.
//   - Structured error markers plus the Wrap and Details helpers that let the
//     stage runner turn failures into typed diagnostics.
//   - A Runner abstraction for external command execution with an explicit
//     working directory, so no code path ever changes the process-wide
//     current directory.
//
// Use these helpers when wiring new provider logic so operational behaviour
// (error handling, observability, retries) stays uniform across stages.
package services
