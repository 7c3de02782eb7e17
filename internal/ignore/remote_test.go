package ignore

import (
	"context"
	"testing"
	"time"

	"github.com/cwilliams/rsinc/testutil"
)

func TestCompileRemote_MatchesIgnoredFile(t *testing.T) {
	ag := testutil.NewFakeAgent()
	ag.Put("rmt/.rignore", []byte("secret.txt\n"), time.Now())
	ag.Put("rmt/secret.txt", []byte("x"), time.Now())
	ag.Put("rmt/keep.txt", []byte("y"), time.Now())

	filter, err := CompileRemote(context.Background(), ag, "rmt")
	if err != nil {
		t.Fatalf("CompileRemote: %v", err)
	}

	if !filter.Match("rmt/secret.txt") {
		t.Fatalf("expected rmt/secret.txt to be ignored")
	}

	if filter.Match("rmt/keep.txt") {
		t.Fatalf("expected rmt/keep.txt to not be ignored")
	}
}

func TestCompileRemote_NestedDirectoryScopesPattern(t *testing.T) {
	ag := testutil.NewFakeAgent()
	ag.Put("rmt/sub/.rignore", []byte("x.txt\n"), time.Now())
	ag.Put("rmt/sub/x.txt", []byte("a"), time.Now())
	ag.Put("rmt/x.txt", []byte("b"), time.Now())

	filter, err := CompileRemote(context.Background(), ag, "rmt")
	if err != nil {
		t.Fatalf("CompileRemote: %v", err)
	}

	if !filter.Match("rmt/sub/x.txt") {
		t.Fatalf("expected rmt/sub/x.txt to be ignored")
	}

	if filter.Match("rmt/x.txt") {
		t.Fatalf("expected top-level rmt/x.txt to not be ignored by a nested pattern")
	}
}

func TestCompileRemote_NoIgnoreFiles(t *testing.T) {
	ag := testutil.NewFakeAgent()
	ag.Put("rmt/a.txt", []byte("a"), time.Now())

	filter, err := CompileRemote(context.Background(), ag, "rmt")
	if err != nil {
		t.Fatalf("CompileRemote: %v", err)
	}

	if len(filter.Patterns) != 0 {
		t.Fatalf("expected no patterns, got %d", len(filter.Patterns))
	}
}
