// Package registry maps task identifiers to their handlers and output
// format names to their writers.
//
// # Overview
//
// A Registry is built once at startup by New, which installs the five
// analysis tasks and the csv and json writers. There is no package-level
// state: callers pass the Registry to whatever needs to dispatch.
//
// # Adding a Task
//
//	reg := registry.New()
//	reg.RegisterTask(registry.Task{
//	    ID:      "6",
//	    Name:    "median-hours",
//	    Handler: medianHoursTable,
//	})
package registry

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/canectors/spfanalyzer/internal/analysis"
	"github.com/canectors/spfanalyzer/internal/errhandling"
	"github.com/canectors/spfanalyzer/internal/modules/output"
)

// Task is a selectable analysis.
type Task struct {
	// ID is the literal identifier used on the command line ("1".."5")
	ID string
	// Name is a short kebab-case name used in logs
	Name string
	// Description is a one-line summary shown by the tasks command
	Description string
	// Handler computes the derived table
	Handler analysis.Handler
}

// OutputConstructor creates an output module writing to path.
type OutputConstructor func(path string) output.Module

// Registry holds the task and output tables.
type Registry struct {
	mu      sync.RWMutex
	tasks   map[string]Task
	outputs map[string]OutputConstructor
}

// New returns a registry with the built-in tasks and output formats.
func New() *Registry {
	r := Empty()
	registerBuiltinTasks(r)
	registerBuiltinOutputs(r)
	return r
}

// Empty returns a registry with nothing registered.
func Empty() *Registry {
	return &Registry{
		tasks:   make(map[string]Task),
		outputs: make(map[string]OutputConstructor),
	}
}

// RegisterTask adds a task, replacing any task with the same ID.
func (r *Registry) RegisterTask(task Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task
}

// RegisterOutput adds an output format, replacing any previous constructor.
func (r *Registry) RegisterOutput(format string, constructor OutputConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[format] = constructor
}

// Task returns the task registered under id. An unknown id is a
// selection error.
func (r *Registry) Task(id string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok {
		return Task{}, errhandling.NewSelectionError(id)
	}
	return task, nil
}

// Tasks returns every registered task ordered by ID, numerically where
// the IDs are numbers.
func (r *Registry) Tasks() []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tasks := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return lessID(tasks[i].ID, tasks[j].ID) })
	return tasks
}

func lessID(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}

// Output creates the output module for format. An unknown format is a
// config error.
func (r *Registry) Output(format, path string) (output.Module, error) {
	r.mu.RLock()
	constructor, ok := r.outputs[format]
	r.mu.RUnlock()
	if !ok {
		return nil, errhandling.NewConfigError(
			fmt.Sprintf("unsupported output format %q (supported: %v)", format, r.OutputFormats()),
			nil,
		)
	}
	return constructor(path), nil
}

// OutputFormats returns the registered output format names, sorted.
func (r *Registry) OutputFormats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]string, 0, len(r.outputs))
	for f := range r.outputs {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
