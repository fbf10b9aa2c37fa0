package validation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
	"github.com/vladislavdragonenkov/storeguard/internal/validation"
)

func failingRule(field, code string) validation.Rule {
	return validation.Sync(field, code, "violated", func() bool { return false })
}

func passingRule(field string) validation.Rule {
	return validation.Sync(field, "UNUSED", "ok", func() bool { return true })
}

func TestEvaluate_CollectsAllViolations(t *testing.T) {
	outcome, err := validation.Evaluate(context.Background(), []validation.Rule{
		failingRule("a", "A_BAD"),
		passingRule("b"),
		failingRule("c", "C_BAD"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Code() != domain.CodeValidationError {
		t.Fatalf("expected VALIDATION_ERROR, got %q", outcome.Code())
	}
	codes := detailCodes(outcome.Details())
	if len(codes) != 2 || codes[0] != "A_BAD" || codes[1] != "C_BAD" {
		t.Fatalf("expected ordered violations [A_BAD C_BAD], got %v", codes)
	}
}

func TestEvaluate_SkipsDependentRules(t *testing.T) {
	ran := false
	dependent := validation.Rule{
		Field:    "b",
		Requires: []string{"a"},
		Check: func(context.Context) (*domain.FieldError, error) {
			ran = true
			return nil, nil
		},
	}

	outcome, err := validation.Evaluate(context.Background(), []validation.Rule{
		failingRule("a", "A_BAD"),
		dependent,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran {
		t.Fatal("dependent rule must be skipped when prerequisite failed")
	}
	if len(outcome.Details()) != 1 {
		t.Fatalf("expected single violation, got %v", outcome.Details())
	}
}

func TestEvaluate_DependentRunsWhenPrerequisitePasses(t *testing.T) {
	ran := false
	dependent := validation.Rule{
		Field:    "b",
		Requires: []string{"a"},
		Check: func(context.Context) (*domain.FieldError, error) {
			ran = true
			return nil, nil
		},
	}

	outcome, err := validation.Evaluate(context.Background(), []validation.Rule{passingRule("a"), dependent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Fatal("dependent rule must run when prerequisite passed")
	}
	if !outcome.IsSuccess() {
		t.Fatalf("expected success, got %v", outcome.Details())
	}
}

func TestEvaluate_StoreFaultAbortsRun(t *testing.T) {
	boom := errors.New("connection refused")
	faulty := validation.Rule{
		Field: "a",
		Check: func(context.Context) (*domain.FieldError, error) {
			return nil, boom
		},
	}
	following := validation.Rule{
		Field: "b",
		Check: func(context.Context) (*domain.FieldError, error) {
			t.Fatal("rules after a fault must not run")
			return nil, nil
		},
	}

	_, err := validation.Evaluate(context.Background(), []validation.Rule{faulty, following})
	if err == nil {
		t.Fatal("expected infrastructure fault to propagate")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("fault must wrap the cause, got %v", err)
	}
	if !strings.Contains(err.Error(), `"a"`) {
		t.Fatalf("fault must name the rule, got %v", err)
	}
}

func TestEvaluate_ViolationFieldDefaultsToRuleField(t *testing.T) {
	rule := validation.Rule{
		Field: "quantity",
		Check: func(context.Context) (*domain.FieldError, error) {
			return &domain.FieldError{Message: "bad", Code: "BAD"}, nil
		},
	}

	outcome, err := validation.Evaluate(context.Background(), []validation.Rule{rule})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Details()[0].Field != "quantity" {
		t.Fatalf("violation field must default to rule field, got %q", outcome.Details()[0].Field)
	}
}
