package tool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var ErrToolNotFound = errors.New("tool not found")

// DefaultTimeout bounds execution for tools that do not declare their own.
const DefaultTimeout = 30 * time.Second

type entry struct {
	tool     Tool
	category string
	stats    *usageStats
}

// Registry catalogs tools by name and performs safe dispatch. The catalog is
// read-heavy and write-rarely (registration happens at startup), so a RWMutex
// guards it; per-tool usage counters are atomics and never contend on the
// catalog lock. Construct one per process and inject it; there is no global
// instance.
type Registry struct {
	mu         sync.RWMutex
	tools      map[string]*entry
	categories map[string][]string // insertion order within a category
	order      []string            // global insertion order

	defaultTimeout time.Duration
	log            *slog.Logger
}

// NewRegistry creates an empty registry. defaultTimeout bounds tools that
// report a zero Timeout; pass 0 to use DefaultTimeout.
func NewRegistry(log *slog.Logger, defaultTimeout time.Duration) *Registry {
	if log == nil {
		log = slog.Default()
	}
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeout
	}
	return &Registry{
		tools:          make(map[string]*entry),
		categories:     make(map[string][]string),
		defaultTimeout: defaultTimeout,
		log:            log,
	}
}

// Register inserts a tool under its schema name. Re-registering an existing
// name overwrites the prior contract but keeps its usage stats; this is
// logged as a warning since it usually signals a wiring mistake.
func (r *Registry) Register(t Tool, category string) {
	name := t.Schema().Name
	if category == "" {
		category = "general"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prior, exists := r.tools[name]; exists {
		r.log.Warn("tool already registered, overwriting contract", "tool", name)
		prior.tool = t
		if prior.category != category {
			r.removeFromCategoryLocked(prior.category, name)
			prior.category = category
			r.categories[category] = append(r.categories[category], name)
		}
		return
	}

	r.tools[name] = &entry{tool: t, category: category, stats: &usageStats{}}
	r.categories[category] = append(r.categories[category], name)
	r.order = append(r.order, name)
	r.log.Info("registered tool", "tool", name, "category", category)
}

// Unregister removes a tool and its category membership. Returns whether the
// tool existed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.tools[name]
	if !exists {
		return false
	}
	delete(r.tools, name)
	r.removeFromCategoryLocked(e.category, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.log.Info("unregistered tool", "tool", name)
	return true
}

func (r *Registry) removeFromCategoryLocked(category, name string) {
	names := r.categories[category]
	for i, n := range names {
		if n == name {
			r.categories[category] = append(names[:i], names[i+1:]...)
			break
		}
	}
	if len(r.categories[category]) == 0 {
		delete(r.categories, category)
	}
}

// GetTool returns the tool registered under name.
func (r *Registry) GetTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return e.tool, true
}

// CategoryOf returns the category a tool was registered under.
func (r *Registry) CategoryOf(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tools[name]
	if !ok {
		return "", false
	}
	return e.category, true
}

// ListTools returns registered tool names in insertion order, filtered by
// category when one is given.
func (r *Registry) ListTools(category string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var src []string
	if category != "" {
		src = r.categories[category]
	} else {
		src = r.order
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Categories returns the category names currently holding at least one tool,
// ordered by first registration.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.categories))
	for _, name := range r.order {
		cat := r.tools[name].category
		if !contains(out, cat) {
			out = append(out, cat)
		}
	}
	return out
}

// Schemas exports the function schemas of registered tools, optionally
// filtered by category, for presentation to a language model.
func (r *Registry) Schemas(category string) []FunctionSchema {
	names := r.ListTools(category)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FunctionSchema, 0, len(names))
	for _, name := range names {
		if e, ok := r.tools[name]; ok {
			out = append(out, e.tool.Schema().Function())
		}
	}
	return out
}

// Execute is the safe dispatch path. Unknown tools and validation failures
// return an error result without running the tool and without touching usage
// stats. Otherwise the tool runs under its timeout; a panic inside Execute is
// recovered into an error result and never propagates to the caller.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) Result {
	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return notFound(name)
	}
	if params == nil {
		params = map[string]any{}
	}

	if err := validateParams(e.tool.Schema(), params); err != nil {
		r.log.Warn("rejected tool params", "tool", name, "error", err)
		return Result{Status: StatusError, Error: err.Error()}
	}

	e.stats.recordInvocation(time.Now().UTC())

	timeout := e.tool.Timeout()
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- Errorf("tool %q panicked: %v", name, rec)
			}
		}()
		done <- e.tool.Execute(execCtx, params)
	}()

	var res Result
	select {
	case res = <-done:
	case <-execCtx.Done():
		// The buffered channel absorbs any late result so the worker
		// goroutine cannot leak; the result itself is discarded.
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			res = Result{
				Status: StatusTimeout,
				Error:  fmt.Sprintf("tool execution timed out after %s", timeout),
			}
			r.log.Error("tool timed out", "tool", name, "timeout", timeout)
		} else {
			res = Errorf("tool execution cancelled: %v", execCtx.Err())
		}
	}

	switch res.Status {
	case StatusSuccess, StatusPartial:
		e.stats.recordSuccess()
	default:
		e.stats.recordError()
	}
	return res
}

// Stats returns a snapshot of one tool's usage counters.
func (r *Registry) Stats(name string) (StatsSnapshot, bool) {
	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return StatsSnapshot{}, false
	}
	return e.stats.snapshot(name), true
}

// AllStats returns the stats boundary shape covering every registered tool.
func (r *Registry) AllStats() StatsReport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report := StatsReport{
		TotalTools: len(r.tools),
		Categories: make([]string, 0, len(r.categories)),
		Tools:      make([]StatsSnapshot, 0, len(r.tools)),
	}
	seen := make(map[string]struct{}, len(r.categories))
	for _, name := range r.order {
		e := r.tools[name]
		if _, dup := seen[e.category]; !dup {
			seen[e.category] = struct{}{}
			report.Categories = append(report.Categories, e.category)
		}
		report.Tools = append(report.Tools, e.stats.snapshot(name))
	}
	return report
}

// ResetStats zeroes the counters of one tool. Returns whether it existed.
func (r *Registry) ResetStats(name string) bool {
	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	e.stats.reset()
	return true
}

// ResetAllStats zeroes the counters of every registered tool.
func (r *Registry) ResetAllStats() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.tools {
		e.stats.reset()
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
