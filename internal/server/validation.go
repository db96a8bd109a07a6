package server

import (
	"strings"
)

const (
	maxNameLength    = 30
	maxCaptionLength = 200
	maxCaptionWords  = 15
)

func validateName(name string) (string, error) {
	return validateText("name", name, maxNameLength)
}

func validateCaption(text string) (string, error) {
	caption, err := validateText("caption", text, maxCaptionLength)
	if err != nil {
		return "", err
	}
	if wordCount(caption) > maxCaptionWords {
		return "", errf(errValidation, "caption must be %d words or fewer", maxCaptionWords)
	}
	return caption, nil
}

func validateSettings(settings Settings, maxRounds, maxPlayers int) (Settings, error) {
	if settings.TotalRounds <= 0 {
		return Settings{}, errf(errValidation, "total rounds must be at least 1")
	}
	if settings.TotalRounds > maxRounds {
		return Settings{}, errf(errValidation, "total rounds must be %d or fewer", maxRounds)
	}
	if settings.MaxPlayers <= 1 {
		return Settings{}, errf(errValidation, "max players must be at least 2")
	}
	if settings.MaxPlayers > maxPlayers {
		return Settings{}, errf(errValidation, "max players must be %d or fewer", maxPlayers)
	}
	if settings.RoundSeconds < 0 {
		return Settings{}, errf(errValidation, "round seconds must not be negative")
	}
	return settings, nil
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", errf(errValidation, "%s is required", label)
	}
	if len(trimmed) > maxLen {
		return "", errf(errValidation, "%s must be %d characters or fewer", label, maxLen)
	}
	if !isSafeText(trimmed) {
		return "", errf(errValidation, "%s contains unsupported characters", label)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

// wordCount counts maximal runs of non-whitespace after trimming.
func wordCount(text string) int {
	return len(strings.Fields(strings.TrimSpace(text)))
}

func isSafeText(text string) bool {
	for _, r := range text {
		if r > 127 {
			return false
		}
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '"', '.', ',', '!', '?', ':', ';', '&', '(', ')', '/':
			continue
		default:
			return false
		}
	}
	return true
}
