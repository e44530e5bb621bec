package config

import "testing"

func TestExpandEnv(t *testing.T) {
	t.Setenv("SIGSPLIT_TEST_TOOL", "/opt/signalp-3.0/signalp")
	t.Setenv("SIGSPLIT_TEST_EMPTY", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set", "path: ${SIGSPLIT_TEST_TOOL}", "path: /opt/signalp-3.0/signalp"},
		{"unset", "path: ${SIGSPLIT_UNSET_12345}", "path: "},
		{"default when unset", "size: ${SIGSPLIT_UNSET_12345:-500}", "size: 500"},
		{"default ignored when set", "path: ${SIGSPLIT_TEST_TOOL:-signalp}", "path: /opt/signalp-3.0/signalp"},
		{"default when empty", "size: ${SIGSPLIT_TEST_EMPTY:-250}", "size: 250"},
		{"multiple", "${SIGSPLIT_UNSET_12345:-a}:${SIGSPLIT_UNSET_12345:-b}", "a:b"},
		{"no vars", "no variables here", "no variables here"},
		{"bare dollar untouched", "cost: $5", "cost: $5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
