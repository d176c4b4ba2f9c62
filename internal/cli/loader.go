package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/casebook/internal/luadsl"
	"github.com/roach88/casebook/internal/scenario"
	"github.com/roach88/casebook/internal/suite"
)

// loadSuite reads a manifest and loads its scripts. Failures are written
// through f and come back as ExitCommandError.
func loadSuite(f *OutputFormatter, path, filter string, logger *slog.Logger) (*suite.Built, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("manifest not found: %s", path), err)
	}

	s, err := suite.Load(path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeLoadFailed, "failed to load manifest", err)
	}
	f.VerboseLog("Loaded suite %s (%d script(s))", s.Name, len(s.Scripts))

	built, err := s.Build(filter, luadsl.WithLogger(logger))
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeBuildFailed, "failed to build suite", err)
	}
	f.VerboseLog("Selected %d scenario(s)", len(built.Scenarios))
	return built, nil
}

// collectInvocations builds every invocation of scs in declaration order.
func collectInvocations(m *scenario.Materializer, scs []*scenario.Scenario) ([]scenario.Invocation, error) {
	var out []scenario.Invocation
	for _, sc := range scs {
		invs, err := m.Invocations(sc)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name(), err)
		}
		out = append(out, invs...)
	}
	return out, nil
}
