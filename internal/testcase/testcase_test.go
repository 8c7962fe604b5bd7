package testcase

import (
	"strings"
	"testing"
)

func sampleState() *State {
	return &State{
		Repos:  []RepoLine{{Name: "main", Priority: 99, Testtags: "-"}},
		System: SystemLine{Arch: "x86_64", Disttype: "rpm", InstalledRepo: "@system"},
		Jobs: []JobLine{
			{Name: "install", Selector: "name", What: "A"},
		},
		Solvables: []SolvableRecord{
			{
				Repo: "main",
				Name: "A",
				Evr:  "1-1",
				Arch: "x86_64",
				Req:  []string{"B"},
				Prv:  []string{"A = 1-1"},
			},
			{Repo: "main", Name: "B", Evr: "1-1", Arch: "x86_64"},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := sampleState()
	var buf strings.Builder
	if err := Write(&buf, s); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if diff := ResultDiff(s, got); diff != "" {
		t.Fatalf("round trip mismatch:\n%s", diff)
	}
}

func TestReadParsesSolvableTags(t *testing.T) {
	src := "repo main 99 testtags -\n" +
		"system x86_64 rpm @system\n" +
		"+Pkg: A 1-1 x86_64\n" +
		"=Repo: main\n" +
		"Req: B\n" +
		"-Pkg\n"

	s, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(s.Solvables) != 1 {
		t.Fatalf("expected 1 solvable, got %d", len(s.Solvables))
	}
	sv := s.Solvables[0]
	if sv.Name != "A" || sv.Evr != "1-1" || sv.Arch != "x86_64" {
		t.Fatalf("unexpected solvable header fields: %+v", sv)
	}
	if len(sv.Req) != 1 || sv.Req[0] != "B" {
		t.Fatalf("expected Req: [B], got %v", sv.Req)
	}
}

func TestReadRejectsUnterminatedBlock(t *testing.T) {
	src := "+Pkg: A 1-1 x86_64\n"
	if _, err := Read(strings.NewReader(src)); err == nil {
		t.Fatalf("expected an error for an unterminated +Pkg block")
	}
}
