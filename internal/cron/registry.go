package cron

import (
	"context"
	"fmt"
	"slices"
)

// Job is one maintenance task run on every worker cycle.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry keeps jobs in registration order with unique names.
type Registry struct {
	jobs []Job
}

// NewRegistry registers jobs in order, ignoring nil entries. It fails on a
// duplicate name.
func NewRegistry(jobs ...Job) (*Registry, error) {
	r := &Registry{}
	for _, job := range jobs {
		if err := r.Register(job); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(job Job) error {
	if job == nil {
		return nil
	}
	if slices.Contains(r.Names(), job.Name()) {
		return fmt.Errorf("cron job %q registered twice", job.Name())
	}
	r.jobs = append(r.jobs, job)
	return nil
}

func (r *Registry) Jobs() []Job {
	return slices.Clone(r.jobs)
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.jobs))
	for i, job := range r.jobs {
		names[i] = job.Name()
	}
	return names
}

// Only returns a registry restricted to the named jobs, keeping
// registration order. Unknown names are an error.
func (r *Registry) Only(names ...string) (*Registry, error) {
	known := r.Names()
	for _, name := range names {
		if !slices.Contains(known, name) {
			return nil, fmt.Errorf("unknown cron job %q (have %v)", name, known)
		}
	}
	subset := &Registry{}
	for _, job := range r.jobs {
		if slices.Contains(names, job.Name()) {
			subset.jobs = append(subset.jobs, job)
		}
	}
	return subset, nil
}
