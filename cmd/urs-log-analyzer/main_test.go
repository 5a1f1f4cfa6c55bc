package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const scenarioLog = `[2021-03-27 10:12:54.960] [901700000000001|rls] [info] JK### RlsUeEntity_sendSetupComplete @ue gnbToken: T1 ueToken: T2 START: 1000.000
[2021-03-27 10:12:54.961] [rls] [info] JK### RlsGnbEntity_onReceive @gNB ueId: 5 ueToken: T2
[2021-03-27 10:12:54.962] [901700000000001|nas] [info] JK### sendInitialRegistrationRequest @ue IMSI: 901700000000001 START: 1000.000
[2021-03-27 10:12:54.967] [901700000000001|nas] [info] JK### sendInitialRegistrationRequest @ue IMSI: 901700000000001 END: 1005.500
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "urs-all.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	good := writeLog(t, scenarioLog)
	bad := writeLog(t, scenarioLog+"[x] JK### sendInitialRegistrationRequest @xx IMSI: 1 START: 1\n")

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "version",
			args:       []string{"-version"},
			wantCode:   0,
			wantStdout: "urs-log-analyzer dev",
		},
		{
			name:       "help",
			args:       []string{"-h"},
			wantCode:   0,
			wantStderr: "Usage:",
		},
		{
			name:       "report",
			args:       []string{"-log-level", "error", "901700000000001", "1", good},
			wantCode:   0,
			wantStdout: "sendInitialRegistrationRequest 5.500\n",
		},
		{
			name:       "wrong argument count",
			args:       []string{"901700000000001", "1"},
			wantCode:   1,
			wantStderr: "Usage:",
		},
		{
			name:       "non-numeric count",
			args:       []string{"901700000000001", "one", good},
			wantCode:   1,
			wantStderr: "ue_count",
		},
		{
			name:       "invalid config",
			args:       []string{"-format", "xml", "901700000000001", "1", good},
			wantCode:   1,
			wantStderr: "Configuration error",
		},
		{
			name:       "missing log",
			args:       []string{"901700000000001", "1", filepath.Join(t.TempDir(), "nope.log")},
			wantCode:   1,
			wantStderr: "no such file",
		},
		{
			name:       "fatal format error",
			args:       []string{"-log-level", "error", "901700000000001", "1", bad},
			wantCode:   1,
			wantStderr: "line 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)

			if code != tt.wantCode {
				t.Errorf("run() = %d, want %d\nstderr: %s", code, tt.wantCode, stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, stdout.String())
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr.String())
			}
			if tt.wantCode != 0 && strings.Contains(stdout.String(), "UE#:") {
				t.Error("no report expected on failure")
			}
		})
	}
}
