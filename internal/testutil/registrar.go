package testutil

import "context"

// Registration is one (title, callback) pair captured by Registrar.
type Registration struct {
	Title string
	Fn    func(ctx context.Context) error
}

// Registrar records registrations without running them. It satisfies the
// scenario registration interface.
type Registrar struct {
	Registrations []Registration
}

// Register records the pair.
func (r *Registrar) Register(title string, fn func(ctx context.Context) error) {
	r.Registrations = append(r.Registrations, Registration{Title: title, Fn: fn})
}

// Titles returns the registered titles in order.
func (r *Registrar) Titles() []string {
	out := make([]string, len(r.Registrations))
	for i, reg := range r.Registrations {
		out[i] = reg.Title
	}
	return out
}

// RunAll invokes every callback in order and returns the errors by index.
// A nil entry means the invocation passed.
func (r *Registrar) RunAll(ctx context.Context) []error {
	errs := make([]error, len(r.Registrations))
	for i, reg := range r.Registrations {
		errs[i] = reg.Fn(ctx)
	}
	return errs
}
