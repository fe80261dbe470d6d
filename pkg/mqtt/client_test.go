package mqtt

import "testing"

func TestTopicsMatch(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"/device/MOWER01/update", "/device/MOWER01/update", true},
		{"/device/MOWER01/update", "/device/MOWER01/get", false},
		{"/device/+/update", "/device/MOWER01/update", true},
		{"/device/+/update", "/device/MOWER01/extra/update", false},
		{"/device/#", "/device/MOWER01/update", true},
		{"/device/#", "/device", false},
		{"/device/+", "/device/MOWER01", true},
		{"/device/+/update", "/device/MOWER01", false},
		{"sunseeker/MOWER01/#", "sunseeker/MOWER01/command/start", true},
	}

	for _, tt := range tests {
		if got := topicsMatch(tt.filter, tt.topic); got != tt.want {
			t.Errorf("topicsMatch(%q, %q) = %v, want %v", tt.filter, tt.topic, got, tt.want)
		}
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	if _, err := NewClient(&ClientConfig{}); err == nil {
		t.Fatal("expected error for missing broker url")
	}

	c, err := NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.IsConnected() {
		t.Error("fresh client reports connected")
	}

	if err := c.Publish(t.Context(), "t", 1, false, nil); err == nil {
		t.Error("publish before Start should fail")
	}
}
