package archive

import (
	"testing"
	"time"

	"github.com/itsbrianburton/sunseeker-bridge/pkg/options"
)

func TestObjectKey(t *testing.T) {
	at := time.Date(2026, 8, 30, 14, 5, 9, 0, time.UTC)
	got := ObjectKey("MOWER01", at)
	want := "MOWER01/2026-08-30T14-05-09Z.json"
	if got != want {
		t.Errorf("ObjectKey() = %q, want %q", got, want)
	}
}

func TestNewArchiverRequiresEndpoint(t *testing.T) {
	opts := options.NewS3Options()
	opts.Endpoint = ""
	if _, err := NewArchiver(opts, nil, nil); err == nil {
		t.Fatal("NewArchiver() accepted disabled options")
	}
}
