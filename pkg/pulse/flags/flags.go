// Package flags provides a configuration-backed feature flag evaluator
// for gating event processing.
//
// The evaluator answers the bus's gate contract from static
// configuration: a default value per flag, with optional per-tenant and
// per-user overrides. It is intended for deployments without a flag
// service; the bus accepts any event.GateEvaluator, so a hosted
// provider can be swapped in without touching bus code.
package flags

import (
	"context"
	"fmt"
	"sync"

	"github.com/elevatehq/pulse/pkg/pulse/config"
	"github.com/elevatehq/pulse/pkg/pulse/event"
)

// Flag is one flag's value with optional overrides.
type Flag struct {
	// Value is the default for everyone not matched by an override.
	Value any

	// Organizations overrides the value for specific tenants.
	Organizations map[string]any

	// Users overrides the value for specific users. User overrides win
	// over organization overrides.
	Users map[string]any
}

// StaticEvaluator evaluates flags from an in-memory table.
// Safe for concurrent use; Set may be called at runtime.
type StaticEvaluator struct {
	mu    sync.RWMutex
	flags map[string]Flag
}

// compile-time contract check
var _ event.GateEvaluator = (*StaticEvaluator)(nil)

// NewStaticEvaluator creates an evaluator with the given flag table.
func NewStaticEvaluator(table map[string]Flag) *StaticEvaluator {
	flags := make(map[string]Flag, len(table))
	for k, v := range table {
		flags[k] = v
	}
	return &StaticEvaluator{flags: flags}
}

// FromConfig builds an evaluator from a configuration section.
//
// Each key under "flags" is a flag. A scalar value is the flag's
// default; a map may carry "value", "organizations", and "users":
//
//	flags:
//	  event-processing-enabled: true
//	  payroll-events-enabled:
//	    value: false
//	    organizations:
//	      org-42: true
//	    users:
//	      user-7: true
func FromConfig(cfg config.Config) *StaticEvaluator {
	section := cfg.Section("flags")
	table := make(map[string]Flag)

	for _, key := range section.Keys() {
		raw := section.Any(key, nil)
		m, ok := raw.(map[string]any)
		if !ok {
			table[key] = Flag{Value: raw}
			continue
		}

		flag := Flag{Value: m["value"]}
		if orgs, ok := m["organizations"].(map[string]any); ok {
			flag.Organizations = orgs
		}
		if users, ok := m["users"].(map[string]any); ok {
			flag.Users = users
		}
		table[key] = flag
	}

	return NewStaticEvaluator(table)
}

// Set installs or replaces a flag at runtime.
func (e *StaticEvaluator) Set(key string, flag Flag) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flags[key] = flag
}

// Delete removes a flag. Subsequent evaluations of the key fail.
func (e *StaticEvaluator) Delete(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.flags, key)
}

// Evaluate implements event.GateEvaluator. Resolution order: user
// override, then organization override, then the flag's default. An
// unknown flag is an evaluation error; the bus treats that as fail-open.
func (e *StaticEvaluator) Evaluate(ctx context.Context, flagKey string, gctx event.GateContext) (event.Decision, error) {
	e.mu.RLock()
	flag, ok := e.flags[flagKey]
	e.mu.RUnlock()

	if !ok {
		return event.Decision{}, fmt.Errorf("unknown flag %q", flagKey)
	}

	if gctx.UserID != "" {
		if v, ok := flag.Users[gctx.UserID]; ok {
			return event.Decision{
				Value:  v,
				Reason: fmt.Sprintf("user override for %s", gctx.UserID),
			}, nil
		}
	}
	if gctx.OrganizationID != "" {
		if v, ok := flag.Organizations[gctx.OrganizationID]; ok {
			return event.Decision{
				Value:  v,
				Reason: fmt.Sprintf("organization override for %s", gctx.OrganizationID),
			}, nil
		}
	}
	return event.Decision{Value: flag.Value, Reason: "default"}, nil
}
