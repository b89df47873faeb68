package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/cartflow/internal/store"
)

// FormatTrace renders a journal as stable text, one event per line. Seq
// numbers and payloads are deterministic under the harness's fixed
// generators; timestamps are omitted.
func FormatTrace(events []store.Event) []byte {
	var b bytes.Buffer
	for _, ev := range events {
		fmt.Fprintf(&b, "%d %s %s\n", ev.Seq, ev.Kind, ev.Summary())
	}
	return b.Bytes()
}

// AssertGolden compares the result's trace against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, FormatTrace(result.Events))
}
