package services

import (
	"strings"

	"sideio-backend/internal/models"
)

// providerRole maps a widget role onto the provider's two roles. Anything
// that is not an assistant tag becomes "user". Tags match regardless of
// case and surrounding space. "model" is accepted as an assistant tag so
// the mapping is idempotent.
func providerRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case models.RoleAssistant, "assistant", models.ProviderRoleModel:
		return models.ProviderRoleModel
	default:
		return models.ProviderRoleUser
	}
}

// ToProviderTurns converts the widget transcript into provider turns,
// keeping order and text untouched.
func ToProviderTurns(history []models.ChatTurn) []models.ProviderTurn {
	turns := make([]models.ProviderTurn, 0, len(history))
	for _, t := range history {
		turns = append(turns, models.ProviderTurn{
			Speaker: providerRole(t.Role),
			Content: t.Text,
		})
	}
	return turns
}

// SanitizeHistory drops a single leading model turn. The widget seeds its
// transcript with a canned greeting that never went through the provider,
// and Gemini rejects a history that opens with the model. Only one turn is
// removed.
func SanitizeHistory(turns []models.ProviderTurn) []models.ProviderTurn {
	if len(turns) > 0 && turns[0].Speaker == models.ProviderRoleModel {
		return turns[1:]
	}
	return turns
}
