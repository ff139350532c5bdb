package generation

import "strings"

// ClassifyError переводит текст ошибки провайдера в человекочитаемую причину.
// Классификация по известным подстрокам, незнакомое получает общее сообщение
func ClassifyError(errorMessage string) string {
	errLower := strings.ToLower(errorMessage)

	switch {
	case strings.Contains(errLower, "timeout") || strings.Contains(errLower, "timed out"):
		return "Превышено время ожидания. Сервис перегружен."
	case strings.Contains(errLower, "content policies") || strings.Contains(errLower, "flagged"):
		return "Запрос нарушает правила контента. Измените описание."
	case strings.Contains(errLower, "insufficient credits"):
		return "Недостаточно кредитов на счете."
	case strings.Contains(errLower, "rate limit"):
		return "Слишком много запросов. Подождите немного."
	default:
		return "Техническая ошибка сервиса. Попробуйте позже."
	}
}
