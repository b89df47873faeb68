package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenariosAgainstGolden(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		s, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass(), "expectations failed: %v", result.Errors)
			AssertGolden(t, s.Name, result)
		})
	}
}

func TestRunReportsExpectationFailures(t *testing.T) {
	total := 99.0
	s := &Scenario{
		Name:   "mismatch",
		User:   "alice",
		Steps:  []Step{{Op: "add", Product: "Ristretto"}},
		Expect: &Expectation{Status: "SUCCESS", Total: &total},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass())
	assert.Len(t, result.Errors, 2)
}

func TestRunRepeatsLastCheckoutOutcome(t *testing.T) {
	// One scripted failure, two attempts: the failure repeats, the retry
	// budget runs out, the cart ends in ERROR.
	s := &Scenario{
		Name:     "repeat_failure",
		User:     "alice",
		Checkout: []CheckoutOutcome{{Error: "out of beans"}},
		Steps: []Step{
			{Op: "add", Product: "Espresso"},
			{Op: "checkout"},
		},
		Expect: &Expectation{Status: "ERROR"},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass(), "expectations failed: %v", result.Errors)
}
