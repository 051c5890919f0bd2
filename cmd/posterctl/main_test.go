package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"poster-backend/internal/diagnosis"
	"poster-backend/internal/session"
	"poster-backend/internal/shared/config"
)

type stubAnalyzer struct {
	text string
	err  error
}

func (s stubAnalyzer) Analyze(ctx context.Context, ref string) (string, error) {
	return s.text, s.err
}

func stubDeps(a session.Analyzer) deps {
	return deps{
		loadConfig: func() config.Config { return config.Config{} },
		buildAnalyzer: func(ctx context.Context, cfg config.Config) (session.Analyzer, error) {
			return a, nil
		},
	}
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posters.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func runCLI(t *testing.T, d deps, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(d)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const cliCSV = "meeting_id,content\nM1,https://x/a.png\nM2,https://x/b.png\n"

func TestRecordsCommandRendersTable(t *testing.T) {
	path := writeCSV(t, cliCSV)
	out, err := runCLI(t, stubDeps(nil), "", "records", "--csv", path)
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	for _, want := range []string{"MEETING ID", "M1", "https://x/b.png", "DATABASE: 2 ENTRIES"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRecordsCommandRejectsSchema(t *testing.T) {
	path := writeCSV(t, "id,url\n1,x\n")
	_, err := runCLI(t, stubDeps(nil), "", "records", "--csv", path)
	if err == nil || !strings.Contains(err.Error(), "meeting_id") {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestDiagnoseCommandJSON(t *testing.T) {
	path := writeCSV(t, cliCSV)
	analyzer := stubAnalyzer{text: `Report body here JSON_DATA_START {"cta_text":"Register"} JSON_DATA_END`}

	out, err := runCLI(t, stubDeps(analyzer), "", "diagnose", "--csv", path, "--id", "M1", "--json")
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if payload["reportText"] != "Report body here" || payload["outcome"] != "parsed" {
		t.Fatalf("unexpected payload %v", payload)
	}
	preview, _ := payload["preview"].(map[string]any)
	if preview["ctaText"] != "Register" {
		t.Fatalf("unexpected preview %v", preview)
	}
}

func TestDiagnoseCommandTable(t *testing.T) {
	path := writeCSV(t, cliCSV)
	analyzer := stubAnalyzer{text: `Body JSON_DATA_START {"optimized_header":{"title":"Summit"}} JSON_DATA_END`}

	out, err := runCLI(t, stubDeps(analyzer), "", "diagnose", "--csv", path, "--id", "M2")
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	for _, want := range []string{"Body", "Summit", "立即预约报名"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestDiagnoseCommandMissAndFailure(t *testing.T) {
	path := writeCSV(t, cliCSV)

	_, err := runCLI(t, stubDeps(stubAnalyzer{text: "x"}), "", "diagnose", "--csv", path, "--id", "M3")
	if err == nil || !strings.Contains(err.Error(), "M3") {
		t.Fatalf("expected not found error mentioning M3, got %v", err)
	}

	_, err = runCLI(t, stubDeps(stubAnalyzer{err: diagnosis.ErrAnalysisFailed}), "", "diagnose", "--csv", path, "--id", "M1")
	if err == nil || err.Error() != diagnosis.ErrAnalysisFailed.Error() {
		t.Fatalf("expected analysis failure, got %v", err)
	}

	failing := stubDeps(nil)
	failing.buildAnalyzer = func(ctx context.Context, cfg config.Config) (session.Analyzer, error) {
		return nil, errors.New("no model")
	}
	if _, err := runCLI(t, failing, "", "diagnose", "--csv", path, "--id", "M1"); err == nil {
		t.Fatalf("expected setup error")
	}
}

func TestSplitCommandFromStdin(t *testing.T) {
	out, err := runCLI(t, stubDeps(nil), "no markers here", "split")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if payload["outcome"] != "fallback" || payload["displayText"] != "no markers here" {
		t.Fatalf("unexpected split output %v", payload)
	}
	if payload["payload"] != nil {
		t.Fatalf("fallback must not carry a payload")
	}
}
