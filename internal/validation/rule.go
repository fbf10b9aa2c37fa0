package validation

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

// Rule — атомарная проверка одного поля или запроса целиком. Правила
// описываются данными и исполняются единым интерпретатором, без иерархий
// валидаторов на каждую сущность.
type Rule struct {
	// Field — имя поля, которому принадлежит нарушение.
	Field string
	// Requires перечисляет поля-предпосылки: если любое из них уже
	// провалилось, правило пропускается, чтобы не проверять зависимое
	// условие над отсутствующей сущностью.
	Requires []string
	// Check возвращает нарушение или nil. Ошибка означает инфраструктурный
	// сбой (хранилище недоступно) и прерывает прогон целиком: сбой чтения
	// никогда не выдаётся за бизнес-отказ.
	Check func(ctx context.Context) (*domain.FieldError, error)
}

// Sync строит правило над уже загруженными данными.
func Sync(field, code, message string, ok func() bool) Rule {
	return Rule{
		Field: field,
		Check: func(context.Context) (*domain.FieldError, error) {
			if ok() {
				return nil, nil
			}
			return &domain.FieldError{Field: field, Message: message, Code: code}, nil
		},
	}
}

// Evaluate прогоняет все правила по порядку и собирает каждое нарушение.
// Независимые правила не прерывают друг друга: в итоговом Outcome видны
// все сработавшие отказы, а не только первый.
func Evaluate(ctx context.Context, rules []Rule) (domain.Outcome[domain.Unit], error) {
	failed := make(map[string]bool)
	var details []domain.FieldError

	for _, rule := range rules {
		if skipRule(rule, failed) {
			continue
		}

		violation, err := rule.Check(ctx)
		if err != nil {
			return domain.Outcome[domain.Unit]{}, fmt.Errorf("rule %q: %w", rule.Field, err)
		}
		if violation == nil {
			continue
		}
		if violation.Field == "" {
			violation.Field = rule.Field
		}
		details = append(details, *violation)
		failed[rule.Field] = true
	}

	if len(details) > 0 {
		return domain.ValidationFailure[domain.Unit](details), nil
	}
	return domain.OK(), nil
}

func skipRule(rule Rule, failed map[string]bool) bool {
	for _, req := range rule.Requires {
		if failed[req] {
			return true
		}
	}
	return false
}
