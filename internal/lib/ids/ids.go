// Package ids генерирует идентификаторы, видимые пользователю:
// номер заказа для платёжного провайдера и отпечаток устройства.
package ids

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// ReferenceID возвращает номер заказа вида LIC-<unix ms>-<6 символов base36 в верхнем регистре>.
func ReferenceID(now time.Time) string {
	return fmt.Sprintf("LIC-%d-%s", now.UnixMilli(), strings.ToUpper(randomBase36(6)))
}

// DeviceFingerprint возвращает отпечаток веб-устройства вида device-web-<9 символов base36>.
func DeviceFingerprint() string {
	return "device-web-" + randomBase36(9)
}

func randomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.IntN(len(base36))]
	}
	return string(b)
}
