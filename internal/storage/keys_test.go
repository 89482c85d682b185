package storage

import "testing"

func TestKeyLayout(t *testing.T) {
	const project = "2f1e9c3a-77b4-4f0e-9b61-0d2a5c8e4f10"

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"latest alias", LatestKey(project, "development"), project + "/development/env.encrypted"},
		{"version blob", VersionKey(project, "development", 3), project + "/development/v3/env.encrypted"},
		{"metadata", MetadataKey(project, "production"), project + "/production/metadata.json"},
		{"legacy", LegacyKey(project), project + "/env.encrypted"},
		{"stage prefix", StagePrefix(project, "staging"), project + "/staging/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestVersionKeyNumbering(t *testing.T) {
	if got := VersionKey("p", "dev", 1); got != "p/dev/v1/env.encrypted" {
		t.Errorf("VersionKey(1) = %q", got)
	}
	if got := VersionKey("p", "dev", 42); got != "p/dev/v42/env.encrypted" {
		t.Errorf("VersionKey(42) = %q", got)
	}
}
