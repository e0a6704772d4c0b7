package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// newID возвращает идентификатор вида "sch_1a2b3c...". Случайная часть
// достаточно длинная, чтобы коллизии на практике не встречались.
func newID(prefix string) string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		// Фолбэк на время, если системный генератор недоступен.
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}
	return prefix + "_" + hex.EncodeToString(b)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
