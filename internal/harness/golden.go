package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/NickH0dges/CS-445/internal/testutil"
)

// RunWithGolden executes a scenario in a throwaway data directory and
// compares the rendered transaction report against a golden file at
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// The report is rendered with a fixed clock so timestamps are stable
// across runs.
func RunWithGolden(t *testing.T, sc *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(sc, t.TempDir(), testutil.NewClock(testutil.FixedTime))
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, []byte(result.Report))
	return result, nil
}
