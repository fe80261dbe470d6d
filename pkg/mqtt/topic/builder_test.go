package topic

import "testing"

func TestBuilder(t *testing.T) {
	b := NewBuilder("device")

	if got, want := b.Command("MOWER01"), "/device/MOWER01/get"; got != want {
		t.Errorf("Command() = %q, want %q", got, want)
	}

	if got, want := b.Response("MOWER01"), "/device/MOWER01/update"; got != want {
		t.Errorf("Response() = %q, want %q", got, want)
	}
}
