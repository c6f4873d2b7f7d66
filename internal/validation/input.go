package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength           = 3
	MaxUsernameLength           = 30
	MinProjectTitleLength       = 3
	MaxProjectTitleLength       = 200
	MinProjectDescriptionLength = 10
	MaxProjectDescriptionLength = 5000
	MaxBidCommentLength         = 2000
	MaxRefundReasonLength       = 500
	MaxReviewCommentLength      = 2000
	MaxLanguageCodeLength       = 10
	MaxLanguagesCount           = 20
	MinBudget                   = 0.0
	MaxBudget                   = 100000000.0 // 100 миллионов
	MaxEstimatedDays            = 365
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	if len(username) > 0 && unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateProjectTitle проверяет заголовок проекта.
func ValidateProjectTitle(title string) error {
	if title == "" {
		return fmt.Errorf("заголовок проекта обязателен")
	}

	title = strings.TrimSpace(title)

	return ValidateLength("заголовок проекта", title, MinProjectTitleLength, MaxProjectTitleLength)
}

// ValidateProjectDescription проверяет описание проекта.
func ValidateProjectDescription(description string) error {
	if description == "" {
		return fmt.Errorf("описание проекта обязательно")
	}

	description = strings.TrimSpace(description)

	return ValidateLength("описание проекта", description, MinProjectDescriptionLength, MaxProjectDescriptionLength)
}

// ValidateBudget проверяет бюджет проекта.
func ValidateBudget(budget float64) error {
	if budget <= MinBudget {
		return fmt.Errorf("бюджет должен быть положительным")
	}
	if budget > MaxBudget {
		return fmt.Errorf("бюджет не может превышать %.0f", MaxBudget)
	}
	return nil
}

// ValidateLanguageCode проверяет код языка (ISO 639-1 с опциональным регионом, например en, pt-BR).
func ValidateLanguageCode(code string) error {
	if code == "" {
		return fmt.Errorf("код языка обязателен")
	}

	code = strings.TrimSpace(code)

	if utf8.RuneCountInString(code) > MaxLanguageCodeLength {
		return fmt.Errorf("код языка не может быть длиннее %d символов", MaxLanguageCodeLength)
	}

	langRegex := regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z]{2,4})?$`)
	if !langRegex.MatchString(code) {
		return fmt.Errorf("код языка '%s' имеет некорректный формат", code)
	}

	return nil
}

// ValidateLanguages проверяет массив языков переводчика.
func ValidateLanguages(languages []string) error {
	if len(languages) > MaxLanguagesCount {
		return fmt.Errorf("количество языков не может превышать %d", MaxLanguagesCount)
	}

	seen := make(map[string]bool)
	for _, lang := range languages {
		lang = strings.TrimSpace(lang)
		if err := ValidateLanguageCode(lang); err != nil {
			return err
		}

		langLower := strings.ToLower(lang)
		if seen[langLower] {
			return fmt.Errorf("язык '%s' указан дважды", lang)
		}
		seen[langLower] = true
	}

	return nil
}

// ValidateLanguagePair проверяет пару язык-источник / язык-цель.
func ValidateLanguagePair(source, target string) error {
	if err := ValidateLanguageCode(source); err != nil {
		return fmt.Errorf("язык оригинала: %w", err)
	}
	if err := ValidateLanguageCode(target); err != nil {
		return fmt.Errorf("язык перевода: %w", err)
	}
	if strings.EqualFold(source, target) {
		return fmt.Errorf("язык оригинала и язык перевода должны различаться")
	}
	return nil
}

// ValidateBidComment проверяет комментарий к предложению.
func ValidateBidComment(comment *string) error {
	if comment != nil && *comment != "" {
		c := strings.TrimSpace(*comment)
		if err := ValidateLength("комментарий", c, 0, MaxBidCommentLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateReviewComment проверяет комментарий к отзыву.
func ValidateReviewComment(comment *string) error {
	if comment != nil && *comment != "" {
		c := strings.TrimSpace(*comment)
		if err := ValidateLength("комментарий отзыва", c, 0, MaxReviewCommentLength); err != nil {
			return err
		}
	}
	return nil
}
