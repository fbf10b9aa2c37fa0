package domain

import "fmt"

// Общие коды отказов, по которым HTTP-граница выбирает класс ответа.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeValidationError = "VALIDATION_ERROR"
	CodeMappingError    = "MAPPING_ERROR"
)

// FieldError описывает нарушение одного правила по конкретному полю запроса.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// failure хранит заполненную ветку отказа.
type failure struct {
	message string
	code    string
	details []FieldError
}

// Outcome — результат бизнес-операции: либо успех со значением, либо ожидаемый
// отказ с сообщением, машинным кодом и списком нарушений по полям. Ровно одна
// ветка заполнена; проверка всегда идёт через IsSuccess/IsFailure, неявной
// булевой семантики у типа нет.
type Outcome[T any] struct {
	value T
	fail  *failure
}

// Unit — пустое значение для операций без полезного результата.
type Unit struct{}

// Success возвращает успешный Outcome со значением.
func Success[T any](value T) Outcome[T] {
	return Outcome[T]{value: value}
}

// OK — успешный Outcome без полезного значения.
func OK() Outcome[Unit] {
	return Success(Unit{})
}

// Failure возвращает отказ с сообщением, кодом и опциональными нарушениями по полям.
func Failure[T any](message, code string, details ...FieldError) Outcome[T] {
	return Outcome[T]{fail: &failure{message: message, code: code, details: details}}
}

// ValidationFailure агрегирует нарушения нескольких правил в один отказ.
func ValidationFailure[T any](details []FieldError) Outcome[T] {
	return Outcome[T]{fail: &failure{
		message: "validation failed",
		code:    CodeValidationError,
		details: details,
	}}
}

// NotFound — отказ для отсутствующей сущности.
func NotFound[T any](entity string) Outcome[T] {
	return Failure[T](fmt.Sprintf("%s not found", entity), CodeNotFound)
}

// Unauthorized — отказ для неаутентифицированного запроса.
func Unauthorized[T any](message string) Outcome[T] {
	if message == "" {
		message = "unauthorized access"
	}
	return Failure[T](message, CodeUnauthorized)
}

// Forbidden — отказ для запроса без прав на операцию.
func Forbidden[T any](message string) Outcome[T] {
	if message == "" {
		message = "access forbidden"
	}
	return Failure[T](message, CodeForbidden)
}

// IsSuccess сообщает, заполнена ли успешная ветка.
func (o Outcome[T]) IsSuccess() bool {
	return o.fail == nil
}

// IsFailure сообщает, заполнена ли ветка отказа.
func (o Outcome[T]) IsFailure() bool {
	return o.fail != nil
}

// Value возвращает значение успешной ветки; для отказа — нулевое значение T.
func (o Outcome[T]) Value() T {
	return o.value
}

// Message возвращает сообщение отказа, пустую строку для успеха.
func (o Outcome[T]) Message() string {
	if o.fail == nil {
		return ""
	}
	return o.fail.message
}

// Code возвращает машинный код отказа, пустую строку для успеха.
// Незаполненный код граница трактует как generic bad request.
func (o Outcome[T]) Code() string {
	if o.fail == nil {
		return ""
	}
	return o.fail.code
}

// Details возвращает нарушения по полям в порядке прогона правил.
func (o Outcome[T]) Details() []FieldError {
	if o.fail == nil {
		return nil
	}
	return o.fail.details
}

// OnSuccess вызывает fn для успешного значения и возвращает Outcome без изменений.
func (o Outcome[T]) OnSuccess(fn func(T)) Outcome[T] {
	if o.fail == nil && fn != nil {
		fn(o.value)
	}
	return o
}

// OnFailure вызывает fn с сообщением и кодом отказа и возвращает Outcome без изменений.
func (o Outcome[T]) OnFailure(fn func(message, code string)) Outcome[T] {
	if o.fail != nil && fn != nil {
		fn(o.fail.message, o.fail.code)
	}
	return o
}

// Map преобразует значение успешной ветки. Отказ проходит насквозь без
// изменений. Ошибка или panic внутри fn превращается в отказ с кодом
// MAPPING_ERROR: комбинатор сам никогда не падает.
func Map[T, U any](o Outcome[T], fn func(T) (U, error)) (result Outcome[U]) {
	if o.fail != nil {
		return Outcome[U]{fail: o.fail}
	}

	defer func() {
		if r := recover(); r != nil {
			result = Failure[U](fmt.Sprintf("mapping failed: %v", r), CodeMappingError)
		}
	}()

	mapped, err := fn(o.value)
	if err != nil {
		return Failure[U](fmt.Sprintf("mapping failed: %v", err), CodeMappingError)
	}
	return Success(mapped)
}
