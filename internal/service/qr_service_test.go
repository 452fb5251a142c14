package service_test

import (
	"bytes"
	"strings"
	"testing"

	"shorturl/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte("\x89PNG")

// TestQRService_GeneratePNG проверяет рендер с дефолтными параметрами
func TestQRService_GeneratePNG(t *testing.T) {
	svc := service.NewQRService()

	png, err := svc.GeneratePNG("https://example.com/abc", 400, "M", 4)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngSignature))
}

// TestQRService_BorderDisabled проверяет, что border 0 выключает рамку
func TestQRService_BorderDisabled(t *testing.T) {
	svc := service.NewQRService()

	png, err := svc.GeneratePNG("https://example.com/abc", 400, "M", 0)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngSignature))
}

// TestQRService_InvalidParams проверяет границы size, level и border
func TestQRService_InvalidParams(t *testing.T) {
	svc := service.NewQRService()

	cases := []struct {
		name   string
		url    string
		size   int
		level  string
		border int
	}{
		{"пустой URL", "", 400, "M", 4},
		{"слишком длинный URL", "https://example.com/" + strings.Repeat("a", 2048), 400, "M", 4},
		{"размер меньше минимума", "https://example.com", 99, "M", 4},
		{"размер больше максимума", "https://example.com", 1001, "M", 4},
		{"неизвестный уровень коррекции", "https://example.com", 400, "X", 4},
		{"отрицательная рамка", "https://example.com", 400, "M", -1},
		{"рамка больше максимума", "https://example.com", 400, "M", 11},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GeneratePNG(tc.url, tc.size, tc.level, tc.border)
			assert.ErrorIs(t, err, service.ErrInvalidQRParams)
		})
	}
}

// TestQRService_LevelCaseInsensitive проверяет регистронезависимость уровня
func TestQRService_LevelCaseInsensitive(t *testing.T) {
	svc := service.NewQRService()

	for _, level := range []string{"l", "m", "q", "h", "L", "M", "Q", "H"} {
		_, err := svc.GeneratePNG("https://example.com", 200, level, 4)
		assert.NoError(t, err, "уровень %q должен приниматься", level)
	}
}
