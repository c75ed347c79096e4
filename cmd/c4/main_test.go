package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.txt")
	desc := `6 7 RED BLUE
3 3 3 3 3 3 3
3 3 3 3 3 3 3
3 3 0 3 3 3 3
3 3 0 3 3 3 3
1 3 0 3 3 3 3
0 1 0 1 1 3 3
3 2
`
	if err := os.WriteFile(path, []byte(desc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"show", path}, nil, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "|. . R . . . .|") {
		t.Fatalf("winning column not highlighted:\n%s", out)
	}
	if !strings.Contains(out, "player 0 (RED) connects four") {
		t.Fatalf("missing result line:\n%s", out)
	}
}

func TestShowMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"show", filepath.Join(t.TempDir(), "nope")}, nil, &stdout, &stderr); code != 1 {
		t.Fatalf("exit %d", code)
	}
}

func TestPlayToConnectFour(t *testing.T) {
	stdin := strings.NewReader("3\n3\n4\nx\n9\n4\n5\n5\n6\n")
	var stdout, stderr bytes.Buffer
	code := run([]string{"play", "-tokens", "green,orange"}, stdin, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, `not a column: "x"`) {
		t.Fatalf("bad input not reported:\n%s", out)
	}
	if !strings.Contains(out, "invalid column") {
		t.Fatalf("out of range column not reported:\n%s", out)
	}
	if !strings.Contains(out, "player 0 (GREEN) connects four") {
		t.Fatalf("missing result line:\n%s", out)
	}
}

func TestPlayRejectsBadFlags(t *testing.T) {
	cases := [][]string{
		{"play", "-rows", "5"},
		{"play", "-tokens", "RED"},
		{"play", "-tokens", "RED,RED"},
	}
	for _, args := range cases {
		var stdout, stderr bytes.Buffer
		if code := run(args, strings.NewReader(""), &stdout, &stderr); code != 1 {
			t.Fatalf("%v: exit %d", args, code)
		}
	}
}

func TestUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, nil, &stdout, &stderr); code != 2 {
		t.Fatalf("exit %d", code)
	}
	if code := run([]string{"bogus"}, nil, &stdout, &stderr); code != 2 {
		t.Fatalf("exit %d", code)
	}
}
