package module

import (
	tghttp "djnic/internal/services/api/telegram/http"

	"djnic/internal/modkit/swaggerkit"
)

func init() { swaggerkit.Register(documentWebhook) }

// documentWebhook adds the webhook, which sits at the server root rather than under the API base
func documentWebhook(doc map[string]any) {
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		return
	}
	paths[WebhookPath] = map[string]any{
		"servers": []any{map[string]any{"url": "/"}},
		"post": map[string]any{
			"tags":        []any{"Telegram"},
			"summary":     "Bot API update receiver",
			"operationId": "telegramWebhook",
			"parameters": []any{map[string]any{
				"name":     tghttp.SecretHeader,
				"in":       "header",
				"required": false,
				"schema":   map[string]any{"type": "string"},
			}},
			"requestBody": map[string]any{
				"required": true,
				"content": map[string]any{
					"application/json": map[string]any{"schema": map[string]any{"type": "object"}},
				},
			},
			"responses": map[string]any{
				"200": textResponse("Always OK once the secret matches"),
				"403": textResponse("Secret header mismatch"),
			},
		},
	}
}

func textResponse(desc string) map[string]any {
	return map[string]any{
		"description": desc,
		"content": map[string]any{
			"text/plain": map[string]any{"schema": map[string]any{"type": "string"}},
		},
	}
}
