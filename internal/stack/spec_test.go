package stack

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func validSpec(t *testing.T, name string) ServiceSpec {
	t.Helper()
	return ServiceSpec{
		Name:         name,
		Command:      []string{"/bin/true"},
		LogPath:      filepath.Join(t.TempDir(), name+".log"),
		Readiness:    ReadinessSpec{Kind: ReadinessProcess, Pattern: name},
		PollInterval: 10 * time.Millisecond,
		Timeout:      100 * time.Millisecond,
	}
}

func TestServiceSpecValidateRejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ServiceSpec)
	}{
		{"missing name", func(s *ServiceSpec) { s.Name = " " }},
		{"no command source", func(s *ServiceSpec) { s.Command = nil }},
		{"missing log path", func(s *ServiceSpec) { s.LogPath = "" }},
		{"zero poll interval", func(s *ServiceSpec) { s.PollInterval = 0 }},
		{"timeout below interval", func(s *ServiceSpec) { s.Timeout = s.PollInterval / 2 }},
		{"unknown readiness kind", func(s *ServiceSpec) { s.Readiness.Kind = "filesystem" }},
		{"process readiness without pattern", func(s *ServiceSpec) {
			s.Readiness = ReadinessSpec{Kind: ReadinessProcess}
		}},
		{"port readiness bad proto", func(s *ServiceSpec) {
			s.Readiness = ReadinessSpec{Kind: ReadinessPort, Proto: "sctp", Port: 14550}
		}},
		{"port readiness bad port", func(s *ServiceSpec) {
			s.Readiness = ReadinessSpec{Kind: ReadinessPort, Proto: "udp", Port: 0}
		}},
	}
	for _, tc := range cases {
		spec := validSpec(t, "sitl")
		tc.mutate(&spec)
		if err := spec.validate(); !errors.Is(err, ErrInvalidService) {
			t.Fatalf("%s: expected ErrInvalidService, got %v", tc.name, err)
		}
	}
}

func TestServiceSpecValidateAcceptsJarAndCandidates(t *testing.T) {
	jar := validSpec(t, "sitl")
	jar.Command = nil
	jar.Jar = "/opt/jMAVSim/jmavsim_run.jar"
	if err := jar.validate(); err != nil {
		t.Fatalf("jar spec should validate: %v", err)
	}

	candidates := validSpec(t, "gcs")
	candidates.Command = nil
	candidates.Candidates = []string{"/usr/bin/QGroundControl"}
	candidates.Readiness = ReadinessSpec{Kind: ReadinessPort, Proto: "udp", Port: 14550}
	if err := candidates.validate(); err != nil {
		t.Fatalf("candidates spec should validate: %v", err)
	}
}
