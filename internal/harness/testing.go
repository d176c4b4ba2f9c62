package harness

import (
	"context"
	"testing"

	"github.com/roach88/casebook/internal/scenario"
)

type testingRegistrar struct {
	t *testing.T
}

// Testing returns a registrar that runs each invocation as a subtest of t,
// named by its title. Failures are reported with t.Error.
func Testing(t *testing.T) scenario.Registrar {
	return testingRegistrar{t: t}
}

func (r testingRegistrar) Register(title string, fn func(ctx context.Context) error) {
	r.t.Helper()
	r.t.Run(title, func(t *testing.T) {
		if err := fn(t.Context()); err != nil {
			t.Error(err)
		}
	})
}
