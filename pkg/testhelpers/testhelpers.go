// Package testhelpers provides small assertion and setup helpers shared by mathtools tests.
package testhelpers

import (
	"reflect"
	"testing"

	"github.com/mcpjungle/mathtools/internal/db"
	"github.com/mcpjungle/mathtools/internal/migrations"
	"gorm.io/gorm"
)

// AssertEqual fails the test if expected and actual are not deeply equal.
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("Expected %v (%T), got %v (%T)", expected, expected, actual, actual)
	}
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Error("Expected an error, got nil")
	}
}

// AssertNotNil fails the test if v is nil, including typed nil pointers.
func AssertNotNil(t *testing.T, v any) {
	t.Helper()
	if v == nil {
		t.Fatal("Expected non-nil value")
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		if rv.IsNil() {
			t.Fatal("Expected non-nil value")
		}
	}
}

func AssertTrue(t *testing.T, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Error(msg)
	}
}

// CommandAnnotationTest describes an expected cobra command annotation.
type CommandAnnotationTest struct {
	Key      string
	Expected string
}

// TestCommandAnnotations checks that every expected annotation is present with the right value.
func TestCommandAnnotations(t *testing.T, annotations map[string]string, tests []CommandAnnotationTest) {
	t.Helper()
	for _, tt := range tests {
		if got := annotations[tt.Key]; got != tt.Expected {
			t.Errorf("Expected annotation %s=%s, got %s", tt.Key, tt.Expected, got)
		}
	}
}

// CreateTestDB opens a fresh, migrated in-memory database.
func CreateTestDB() (*gorm.DB, error) {
	conn, err := db.NewDBConnection("")
	if err != nil {
		return nil, err
	}
	if err := migrations.Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// TestDBSetup bundles a test database with its cleanup function.
type TestDBSetup struct {
	DB      *gorm.DB
	Cleanup func()
}

// SetupTestDB creates a migrated in-memory database and fails the test if that is not possible.
func SetupTestDB(t *testing.T) *TestDBSetup {
	t.Helper()
	conn, err := CreateTestDB()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	return &TestDBSetup{
		DB: conn,
		Cleanup: func() {
			if sqlDB, err := conn.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}
}
