package integration

import (
	"os"
	"testing"

	"github.com/hokuto/simple-cms/tests/testutil"
)

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

// setupTest starts a migrated throwaway database for one test.
func setupTest(t *testing.T) *testutil.TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	return testutil.SetupTestDB(t)
}
