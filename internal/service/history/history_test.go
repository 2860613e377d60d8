package history

import (
	"errors"
	"testing"
	"time"

	"github.com/mcpjungle/mathtools/pkg/testhelpers"
	"github.com/mcpjungle/mathtools/pkg/types"
)

func TestNewHistoryService(t *testing.T) {
	db, err := testhelpers.CreateTestDB()
	testhelpers.AssertNoError(t, err)

	svc := NewHistoryService(db)
	testhelpers.AssertNotNil(t, svc)
	if svc.db != db {
		t.Errorf("Expected db to be %v, got %v", db, svc.db)
	}
}

func TestRecordSuccess(t *testing.T) {
	setup := testhelpers.SetupTestDB(t)
	defer setup.Cleanup()

	svc := NewHistoryService(setup.DB)

	inv, err := svc.Record(Entry{
		Tool:      "multiply",
		Arguments: map[string]any{"a": 3.0, "b": 4.0},
		Elapsed:   3 * time.Millisecond,
	})
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, types.InvocationOutcomeSuccess, inv.Outcome)
	testhelpers.AssertEqual(t, int64(3), inv.DurationMs)
	testhelpers.AssertEqual(t, types.ErrorKind(""), inv.ErrorKind)

	api := ToAPI(inv)
	testhelpers.AssertEqual(t, "multiply", api.Tool)
	testhelpers.AssertEqual(t, 4.0, api.Arguments["b"])
}

func TestRecordError(t *testing.T) {
	setup := testhelpers.SetupTestDB(t)
	defer setup.Cleanup()

	svc := NewHistoryService(setup.DB)

	inv, err := svc.Record(Entry{
		Tool: "divide",
		Err:  types.NewToolError(types.ErrorKindUnknownTool, "tool 'divide' is not registered"),
	})
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, types.InvocationOutcomeError, inv.Outcome)
	testhelpers.AssertEqual(t, types.ErrorKindUnknownTool, inv.ErrorKind)

	// errors that are not ToolErrors are recorded without a kind
	inv, err = svc.Record(Entry{Tool: "multiply", Err: errors.New("boom")})
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, types.ErrorKind(""), inv.ErrorKind)
	testhelpers.AssertEqual(t, "boom", inv.Message)
}

func TestListNewestFirst(t *testing.T) {
	setup := testhelpers.SetupTestDB(t)
	defer setup.Cleanup()

	svc := NewHistoryService(setup.DB)

	for _, name := range []string{"first", "second", "third"} {
		_, err := svc.Record(Entry{Tool: name})
		testhelpers.AssertNoError(t, err)
	}

	records, err := svc.List(2)
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, 2, len(records))
	testhelpers.AssertEqual(t, "third", records[0].Tool)
	testhelpers.AssertEqual(t, "second", records[1].Tool)

	records, err = svc.List(0)
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, 3, len(records))
}
