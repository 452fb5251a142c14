package auth

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	// bcrypt учитывает только первые 72 байта пароля
	bcryptMaxBytes = 72
	bcryptCost     = 12
)

// HashPassword хэширует пароль bcrypt'ом с cost 12.
// Усечение до 72 байт применяется здесь и в CheckPassword одинаково,
// поэтому эффективный credential пароля - его первые 72 байта
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncatePassword(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword проверяет пароль против хэша с тем же усечением
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncatePassword(password)) == nil
}

// truncatePassword обрезает пароль до 72 байт, не разрывая UTF-8 последовательность
func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) <= bcryptMaxBytes {
		return b
	}

	b = b[:bcryptMaxBytes]
	// Срез мог попасть в середину многобайтового символа - отбрасываем хвост
	for len(b) > 0 {
		r, size := utf8.DecodeLastRune(b)
		if r != utf8.RuneError || size > 1 {
			break
		}
		b = b[:len(b)-1]
	}

	return b
}
