package types

import (
	"errors"
	"testing"
)

func TestResultVariants(t *testing.T) {
	ok := Success(42)
	if !ok.IsSuccess() || ok.Value() != 42 || ok.Err() != nil {
		t.Fatalf("unexpected success result: %+v", ok)
	}

	cause := errors.New("boom")
	fail := Failure[int](cause)
	if !fail.IsFailure() || !errors.Is(fail.Err(), cause) {
		t.Fatalf("unexpected failure result: %+v", fail)
	}
	if fail.Value() != 0 {
		t.Fatalf("failure value should be zero")
	}

	pending := Loading[int]()
	if !pending.IsLoading() || pending.Err() != nil {
		t.Fatalf("unexpected loading result: %+v", pending)
	}
}

func TestResultMatchDispatchesOnce(t *testing.T) {
	var hits []string
	record := func(name string) func() { return func() { hits = append(hits, name) } }

	Success("x").Match(
		func(string) { hits = append(hits, "success") },
		func(error) { hits = append(hits, "failure") },
		record("loading"),
	)
	Failure[string](errors.New("boom")).Match(
		func(string) { hits = append(hits, "success") },
		func(error) { hits = append(hits, "failure") },
		record("loading"),
	)
	Loading[string]().Match(
		func(string) { hits = append(hits, "success") },
		func(error) { hits = append(hits, "failure") },
		record("loading"),
	)

	if len(hits) != 3 || hits[0] != "success" || hits[1] != "failure" || hits[2] != "loading" {
		t.Fatalf("unexpected dispatch order: %v", hits)
	}
}
