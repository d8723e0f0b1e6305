package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLoggerRedirects(t *testing.T) {
	orig := Logf
	defer SetLogger(orig)

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	Logf("loaded %d rows", 42)
	if got != "loaded 42 rows" {
		t.Errorf("logged %q, want %q", got, "loaded 42 rows")
	}
}

func TestSetLoggerNilInstallsNoop(t *testing.T) {
	orig := Logf
	defer SetLogger(orig)

	SetLogger(nil)
	if Logf == nil {
		t.Fatal("Logf is nil after SetLogger(nil)")
	}
	// must not panic
	Logf("ignored %v", 1)
}
