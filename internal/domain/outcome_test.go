package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

func TestOutcome_SuccessAccessors(t *testing.T) {
	outcome := domain.Success(42)

	if !outcome.IsSuccess() || outcome.IsFailure() {
		t.Fatalf("expected success outcome")
	}
	if outcome.Value() != 42 {
		t.Fatalf("expected value 42, got %d", outcome.Value())
	}
	if outcome.Message() != "" || outcome.Code() != "" || outcome.Details() != nil {
		t.Fatalf("success must not expose failure data")
	}
}

func TestOutcome_FailureAccessors(t *testing.T) {
	detail := domain.FieldError{Field: "quantity", Message: "too big", Code: "SOME_CODE"}
	outcome := domain.Failure[int]("rejected", domain.CodeValidationError, detail)

	if outcome.IsSuccess() || !outcome.IsFailure() {
		t.Fatalf("expected failure outcome")
	}
	if outcome.Value() != 0 {
		t.Fatalf("failure value must be zero, got %d", outcome.Value())
	}
	if outcome.Message() != "rejected" {
		t.Fatalf("unexpected message %q", outcome.Message())
	}
	if outcome.Code() != domain.CodeValidationError {
		t.Fatalf("unexpected code %q", outcome.Code())
	}
	if len(outcome.Details()) != 1 || outcome.Details()[0] != detail {
		t.Fatalf("unexpected details %v", outcome.Details())
	}
}

func TestOutcome_Hooks(t *testing.T) {
	var succeeded, failed bool

	domain.Success("ok").
		OnSuccess(func(string) { succeeded = true }).
		OnFailure(func(string, string) { t.Fatal("OnFailure must not fire for success") })
	if !succeeded {
		t.Fatal("OnSuccess did not fire")
	}

	domain.Failure[string]("bad", domain.CodeValidationError).
		OnSuccess(func(string) { t.Fatal("OnSuccess must not fire for failure") }).
		OnFailure(func(message, code string) {
			failed = message == "bad" && code == domain.CodeValidationError
		})
	if !failed {
		t.Fatal("OnFailure did not receive message and code")
	}
}

func TestMap_TransformsSuccess(t *testing.T) {
	mapped := domain.Map(domain.Success(21), func(v int) (int, error) {
		return v * 2, nil
	})
	if !mapped.IsSuccess() || mapped.Value() != 42 {
		t.Fatalf("expected mapped value 42, got %+v", mapped)
	}
}

func TestMap_PassesFailureThrough(t *testing.T) {
	detail := domain.FieldError{Field: "f", Message: "m", Code: "C"}
	original := domain.Failure[int]("nope", domain.CodeNotFound, detail)

	mapped := domain.Map(original, func(int) (string, error) {
		t.Fatal("mapper must not run for failure")
		return "", nil
	})
	if mapped.Code() != domain.CodeNotFound || mapped.Message() != "nope" {
		t.Fatalf("failure must pass through unchanged, got %+v", mapped)
	}
	if len(mapped.Details()) != 1 || mapped.Details()[0] != detail {
		t.Fatalf("details lost in passthrough: %v", mapped.Details())
	}
}

func TestMap_ErrorBecomesMappingError(t *testing.T) {
	mapped := domain.Map(domain.Success(1), func(int) (int, error) {
		return 0, errors.New("boom")
	})
	if !mapped.IsFailure() || mapped.Code() != domain.CodeMappingError {
		t.Fatalf("expected MAPPING_ERROR, got %+v", mapped)
	}
	if !strings.Contains(mapped.Message(), "boom") {
		t.Fatalf("expected cause in message, got %q", mapped.Message())
	}
}

func TestMap_PanicBecomesMappingError(t *testing.T) {
	mapped := domain.Map(domain.Success(1), func(int) (int, error) {
		panic("exploded")
	})
	if !mapped.IsFailure() || mapped.Code() != domain.CodeMappingError {
		t.Fatalf("expected MAPPING_ERROR after panic, got %+v", mapped)
	}
	if !strings.Contains(mapped.Message(), "exploded") {
		t.Fatalf("expected panic value in message, got %q", mapped.Message())
	}
}

func TestNotFoundHelper(t *testing.T) {
	outcome := domain.NotFound[domain.Unit]("order")
	if outcome.Code() != domain.CodeNotFound {
		t.Fatalf("unexpected code %q", outcome.Code())
	}
	if outcome.Message() != "order not found" {
		t.Fatalf("unexpected message %q", outcome.Message())
	}
}
