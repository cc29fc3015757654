// dephealth_test.go — unit-тесты вспомогательных функций dephealth.
package service

import "testing"

// TestHealthPath проверяет извлечение health path из URL зависимостей.
func TestHealthPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fallback string
		expected string
	}{
		{
			name:     "URL с path провайдера",
			input:    "https://auth.example.com/auth/v1",
			fallback: "/health",
			expected: "/auth/v1",
		},
		{
			name:     "URL без path — fallback",
			input:    "https://auth.example.com",
			fallback: "/health",
			expected: "/health",
		},
		{
			name:     "webhook сервиса распознавания",
			input:    "https://n8n.example.com/webhook/extract-invoice",
			fallback: "/",
			expected: "/webhook/extract-invoice",
		},
		{
			name:     "пустой URL — fallback",
			input:    "",
			fallback: "/",
			expected: "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := healthPath(tt.input, tt.fallback)
			if result != tt.expected {
				t.Errorf("healthPath(%q) = %q, ожидалось %q", tt.input, result, tt.expected)
			}
		})
	}
}
