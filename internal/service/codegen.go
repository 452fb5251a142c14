package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"

	"shorturl/internal/repository"
)

// Ошибки аллокатора коротких кодов
var (
	ErrInvalidCode      = errors.New("invalid custom code")
	ErrCodeGenExhausted = errors.New("failed to generate unique short code")
)

const (
	charset             = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxGenerateAttempts = 10
)

var customCodePattern = regexp.MustCompile(`^[a-zA-Z0-9]{4,20}$`)

// CodeAllocator выдаёт короткие коды: валидирует кастомные и генерирует
// случайные. Код не резервируется - ограничение уникальности в БД остаётся
// источником истины, проверка существования только ускоряет отказ
type CodeAllocator struct {
	linkRepo   repository.LinkRepository
	codeLength int
}

func NewCodeAllocator(linkRepo repository.LinkRepository, codeLength int) *CodeAllocator {
	return &CodeAllocator{
		linkRepo:   linkRepo,
		codeLength: codeLength,
	}
}

// Allocate возвращает короткий код для новой ссылки.
// Кастомный код: alphanumeric 4-20 символов, занятость - ошибка без retry.
// Случайный код: до 10 попыток против существующих кодов
func (a *CodeAllocator) Allocate(ctx context.Context, customCode *string) (string, error) {
	if customCode != nil && *customCode != "" {
		if !customCodePattern.MatchString(*customCode) {
			return "", ErrInvalidCode
		}

		exists, err := a.linkRepo.CodeExists(ctx, *customCode)
		if err != nil {
			return "", err
		}
		if exists {
			return "", repository.ErrCodeExists
		}

		return *customCode, nil
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := a.generate()
		if err != nil {
			return "", err
		}

		exists, err := a.linkRepo.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	// При длине 8 и алфавите 62 практически недостижимо, но обрабатываем
	return "", ErrCodeGenExhausted
}

// generate создаёт случайный код из криптографически стойкого источника
func (a *CodeAllocator) generate() (string, error) {
	result := make([]byte, a.codeLength)
	for i := 0; i < a.codeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		result[i] = charset[num.Int64()]
	}
	return string(result), nil
}
