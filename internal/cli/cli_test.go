package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	appLog "csv2ics/internal/log"
)

const breakUID = "5aa8034f-7e0d-3307-9596-ebbc05567404"

func testEnv(vars map[string]string) (Env, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return Env{
		Stdout: &stdout,
		Stderr: &stderr,
		Lookup: func(k string) (string, bool) {
			v, ok := vars[k]
			return v, ok
		},
	}, &stdout, &stderr
}

func quietLog(t *testing.T) {
	t.Helper()
	appLog.SetOutput(io.Discard)
	t.Cleanup(func() { appLog.SetLevel(appLog.LevelInfo) })
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func readText(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestExecute_Convert(t *testing.T) {
	quietLog(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "events.csv", "Start;End;Name;Description\n2024-12-24;2024-12-26;Break;Office closed\n")

	env, _, stderr := testEnv(nil)
	if code := Execute([]string{src}, env); code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr.String())
	}

	got := readText(t, filepath.Join(dir, "events.ics"))
	if !strings.Contains(got, "UID:"+breakUID+"\n") {
		t.Fatalf("missing event:\n%s", got)
	}
	if strings.Contains(got, "\r\n") {
		t.Fatalf("expected LF line endings by default")
	}
}

func TestExecute_NoHeader(t *testing.T) {
	quietLog(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "plain.csv", "2024-12-24;2024-12-26;Break;\n2024-01-01;;New Year;\n")

	env, _, stderr := testEnv(nil)
	if code := Execute([]string{"--noheader", src}, env); code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr.String())
	}

	got := readText(t, filepath.Join(dir, "plain.ics"))
	if n := strings.Count(got, "BEGIN:VEVENT"); n != 2 {
		t.Fatalf("got %d events, want 2:\n%s", n, got)
	}
}

func TestExecute_DelimiterFlagAndCRLF(t *testing.T) {
	quietLog(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "comma.csv", "start,end,name,description\n2024-12-24,2024-12-26,Break,Office closed\n")

	env, _, stderr := testEnv(nil)
	if code := Execute([]string{"-d", ",", "--line-ending", "crlf", src}, env); code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr.String())
	}

	got := readText(t, filepath.Join(dir, "comma.ics"))
	if !strings.Contains(got, "UID:"+breakUID+"\r\n") {
		t.Fatalf("expected CRLF output with the event:\n%q", got)
	}
}

func TestExecute_EnvAndConfigFile(t *testing.T) {
	quietLog(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "pipe.csv", "2024-12-24|2024-12-26|Break|\n")
	cfgPath := writeFile(t, dir, "csv2ics.yaml", "delimiter: \",\"\nheader: false\n")

	// The environment overrides the file.
	env, _, stderr := testEnv(map[string]string{
		"CSV2ICS_CONFIG":    cfgPath,
		"CSV2ICS_DELIMITER": "|",
	})
	if code := Execute([]string{src}, env); code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr.String())
	}
	if got := readText(t, filepath.Join(dir, "pipe.ics")); !strings.Contains(got, breakUID) {
		t.Fatalf("missing event:\n%s", got)
	}

	// Flags override the environment.
	src2 := writeFile(t, dir, "semi.csv", "2024-12-24;2024-12-26;Break;\n")
	if code := Execute([]string{"-d", ";", src2}, env); code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr.String())
	}
	if got := readText(t, filepath.Join(dir, "semi.ics")); !strings.Contains(got, breakUID) {
		t.Fatalf("missing event:\n%s", got)
	}
}

func TestExecute_MissingSourceFails(t *testing.T) {
	quietLog(t)
	env, _, _ := testEnv(nil)
	if code := Execute([]string{filepath.Join(t.TempDir(), "nope.csv")}, env); code != ExitFailure {
		t.Fatalf("exit = %d, want %d", code, ExitFailure)
	}
}

func TestExecute_InvalidInvocation(t *testing.T) {
	quietLog(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "events.csv", "Start;End;Name;Description\n")

	cases := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"no arguments", nil, nil},
		{"two arguments", []string{src, src}, nil},
		{"unknown flag", []string{"--bogus", src}, nil},
		{"long delimiter", []string{"-d", "ab", src}, nil},
		{"bad line ending", []string{"--line-ending", "cr", src}, nil},
		{"bad header env", []string{src}, map[string]string{"CSV2ICS_HEADER": "perhaps"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env, _, stderr := testEnv(tc.env)
			if code := Execute(tc.args, env); code != ExitInvalidInvocation {
				t.Fatalf("exit = %d, want %d", code, ExitInvalidInvocation)
			}
			if stderr.Len() == 0 {
				t.Fatalf("expected a message on stderr")
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "events.ics")); !os.IsNotExist(err) {
		t.Fatalf("invalid invocation must not write output: %v", err)
	}
}

func TestExecute_Inspect(t *testing.T) {
	quietLog(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "events.csv", "Start;End;Name;Description\n2024-12-24;2024-12-26;Break;Office closed\n")

	env, stdout, stderr := testEnv(nil)
	if code := Execute([]string{src}, env); code != ExitSuccess {
		t.Fatalf("convert exit = %d, stderr: %s", code, stderr.String())
	}
	if code := Execute([]string{"inspect", filepath.Join(dir, "events.ics")}, env); code != ExitSuccess {
		t.Fatalf("inspect exit = %d, stderr: %s", code, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{"START", "2024-12-24", "2024-12-26", breakUID, "Break"} {
		if !strings.Contains(out, want) {
			t.Fatalf("inspect output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "2024-12-27") {
		t.Fatalf("inspect must print the inclusive last day:\n%s", out)
	}
}

func TestExecute_ConfigInit(t *testing.T) {
	quietLog(t)
	path := filepath.Join(t.TempDir(), "csv2ics.yaml")

	env, stdout, stderr := testEnv(nil)
	if code := Execute([]string{"config", "init", path}, env); code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr.String())
	}
	if strings.TrimSpace(stdout.String()) != path {
		t.Fatalf("stdout = %q, want %q", stdout.String(), path)
	}
	if got := readText(t, path); !strings.Contains(got, "delimiter:") {
		t.Fatalf("unexpected config:\n%s", got)
	}

	if code := Execute([]string{"config", "init", path}, env); code != ExitInvalidInvocation {
		t.Fatalf("second init exit = %d, want %d", code, ExitInvalidInvocation)
	}
	if code := Execute([]string{"config", "init", "--force", path}, env); code != ExitSuccess {
		t.Fatalf("forced init exit = %d, stderr: %s", code, stderr.String())
	}
}
