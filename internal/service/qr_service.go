package service

import (
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

var ErrInvalidQRParams = errors.New("invalid QR code parameters")

const (
	qrMinSize      = 100
	qrMaxSize      = 1000
	qrMinBorder    = 0
	qrMaxBorder    = 10
	qrMaxURLLength = 2048
)

var qrLevels = map[string]qrcode.RecoveryLevel{
	"L": qrcode.Low,
	"M": qrcode.Medium,
	"Q": qrcode.High,
	"H": qrcode.Highest,
}

// QRService рендерит QR-коды коротких ссылок в PNG
type QRService interface {
	GeneratePNG(url string, size int, level string, border int) ([]byte, error)
}

type qrService struct{}

func NewQRService() QRService {
	return &qrService{}
}

// GeneratePNG кодирует url в PNG размером size пикселей.
// level - уровень коррекции ошибок L/M/Q/H, border - рамка 0-10.
// Энкодер поддерживает только стандартную quiet zone или её отсутствие,
// поэтому border 0 выключает рамку, значения 1-10 дают стандартную
func (s *qrService) GeneratePNG(url string, size int, level string, border int) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: URL cannot be empty", ErrInvalidQRParams)
	}
	if len(url) > qrMaxURLLength {
		return nil, fmt.Errorf("%w: URL exceeds maximum length of %d", ErrInvalidQRParams, qrMaxURLLength)
	}
	if size < qrMinSize || size > qrMaxSize {
		return nil, fmt.Errorf("%w: size must be between %d and %d", ErrInvalidQRParams, qrMinSize, qrMaxSize)
	}
	if border < qrMinBorder || border > qrMaxBorder {
		return nil, fmt.Errorf("%w: border must be between %d and %d", ErrInvalidQRParams, qrMinBorder, qrMaxBorder)
	}

	recovery, ok := qrLevels[strings.ToUpper(level)]
	if !ok {
		return nil, fmt.Errorf("%w: error correction level must be L, M, Q or H", ErrInvalidQRParams)
	}

	code, err := qrcode.New(url, recovery)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	code.DisableBorder = border == 0

	png, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	return png, nil
}
