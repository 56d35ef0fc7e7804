package vispctl

import "github.com/humlab-speech/vispctl/internal/engine"

// Type aliases re-export the engine result and option types as the public
// API, so embedders only import this package.

type Outcome = engine.Outcome
type Status = engine.Status
type SyncState = engine.SyncState
type ComponentStatus = engine.ComponentStatus
type BatchAction = engine.BatchAction
type BatchResult = engine.BatchResult
type UpdateOptions = engine.UpdateOptions
type StatusOptions = engine.StatusOptions
