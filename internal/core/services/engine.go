// Package services implements the engine's driving-side ports: the host
// adapter every class load goes through, and the admin operations (rescan,
// stats) the operational shell exposes.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mixinforge/mixinengine/internal/core/domain"
	"github.com/mixinforge/mixinengine/internal/core/ports/driven"
	"github.com/mixinforge/mixinengine/internal/core/ports/driving"
	"github.com/mixinforge/mixinengine/internal/registry"
	"github.com/mixinforge/mixinengine/internal/transform"
)

var (
	_ driving.HostAdapter   = (*Engine)(nil)
	_ driving.AdminService  = (*Engine)(nil)
)

// RescanLockName is the distributed lock key every engine instance
// contends for when rescanning, so a fleet of engines never rebuilds the
// index concurrently against the same mixin module set.
const RescanLockName = "mixinengine:rescan"

// DefaultRescanLockTTL bounds how long one instance can hold the rescan
// lock before another is allowed to assume it died mid-scan.
const DefaultRescanLockTTL = 30 * time.Second

// Engine wires the mixin index, selector, and transform pipeline behind
// the host-facing and admin-facing ports. It is the single place that
// knows both: lock is optional (nil disables cross-instance coordination,
// fine for a single-instance deployment); auditStore is optional (nil
// disables persistence of transform outcomes).
type Engine struct {
	log *slog.Logger

	index    *registry.Index
	selector *registry.Selector
	pipeline *transform.Pipeline
	scanner  driven.MixinScanner

	lock     driven.DistributedLock
	lockTTL  time.Duration
	auditStore driven.AuditStore

	mu             sync.RWMutex
	moduleFailures map[string]int
}

// Config carries Engine's constructor dependencies.
type Config struct {
	Log        *slog.Logger
	Index      *registry.Index
	Selector   *registry.Selector
	Pipeline   *transform.Pipeline
	Scanner    driven.MixinScanner
	Lock       driven.DistributedLock // optional
	LockTTL    time.Duration          // defaults to DefaultRescanLockTTL
	AuditStore driven.AuditStore      // optional
}

// NewEngine builds an Engine from cfg.
func NewEngine(cfg Config) *Engine {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = DefaultRescanLockTTL
	}
	return &Engine{
		log:            log,
		index:          cfg.Index,
		selector:       cfg.Selector,
		pipeline:       cfg.Pipeline,
		scanner:        cfg.Scanner,
		lock:           cfg.Lock,
		lockTTL:        ttl,
		auditStore:     cfg.AuditStore,
		moduleFailures: make(map[string]int),
	}
}

// ModifyClass implements driving.HostAdapter. No error or panic from
// anywhere in the pipeline ever crosses this function: a recover here is
// the engine's last line of defense, on top of transform.Pipeline's own
// per-mixin isolation.
func (e *Engine) ModifyClass(ctx context.Context, className string, classData []byte) (out []byte) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("ModifyClass panicked, failing safe to no change", "class", className, "recover", r)
			out = nil
		}
	}()

	if len(classData) == 0 {
		if e.selector.HasAnyMatch(className) {
			return []byte{}
		}
		return nil
	}

	transformed, result := e.pipeline.Transform(className, classData)
	e.recordModuleFailures(result.ModuleFailures)
	e.recordAudit(ctx, className, transformed != nil, result)
	return transformed
}

func (e *Engine) recordModuleFailures(failures map[string]int) {
	if len(failures) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for module, n := range failures {
		e.moduleFailures[module] += n
	}
}

func (e *Engine) recordAudit(ctx context.Context, className string, modified bool, result transform.Result) {
	if e.auditStore == nil {
		return
	}
	rec := &domain.AuditRecord{
		ClassName:     className,
		Modified:      modified,
		MixinsApplied: result.Applied,
		MixinsFailed:  result.Failed,
		OccurredAt:    time.Now(),
	}
	if err := e.auditStore.RecordTransform(ctx, rec); err != nil {
		e.log.Warn("failed to persist audit record", "class", className, "error", err)
	}
}

// Rescan implements driving.AdminService. When a distributed lock is
// configured, only one engine instance in a fleet rebuilds the index at a
// time; the rest observe ErrRescanInProgress and skip.
func (e *Engine) Rescan(ctx context.Context) error {
	if e.lock != nil {
		acquired, err := e.lock.Acquire(ctx, RescanLockName, e.lockTTL)
		if err != nil {
			return fmt.Errorf("acquire rescan lock: %w", err)
		}
		if !acquired {
			return domain.ErrRescanInProgress
		}
		defer func() {
			if releaseErr := e.lock.Release(ctx, RescanLockName); releaseErr != nil {
				e.log.Warn("failed to release rescan lock", "error", releaseErr)
			}
		}()
	}

	descriptors, err := e.scanner.Scan()
	if err != nil {
		return fmt.Errorf("scan mixin modules: %w", err)
	}

	e.index.Rebuild(descriptors, time.Now().Unix())
	e.log.Info("mixin index rebuilt", "mixins", len(descriptors))
	return nil
}

// Stats implements driving.AdminService.
func (e *Engine) Stats() driving.EngineStats {
	classes, fields, methods, codes := e.index.Counts()

	e.mu.RLock()
	failures := make(map[string]int, len(e.moduleFailures))
	for k, v := range e.moduleFailures {
		failures[k] = v
	}
	e.mu.RUnlock()

	return driving.EngineStats{
		TotalMixins:      classes + fields + methods + codes,
		ClassMixins:      classes,
		FieldMixins:      fields,
		MethodMixins:     methods,
		MethodCodeMixins: codes,
		LastRebuildUnix:  e.index.BuiltAt(),
		ModuleFailures:   failures,
	}
}
