// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// DuplicateDetectionService classifies uploads, IngestionOrchestrator runs
// accepted uploads through storage, extraction, chunking and indexing,
// DocumentService manages what was stored and Watcher feeds a drop folder
// into ingestion.
package services
