package models

import "time"

// LicenseToken — полезная нагрузка сессионного токена лицензии.
// Expiration может отсутствовать: такой токен никогда не истекает.
type LicenseToken struct {
	Email       string     `json:"email"`
	Features    []string   `json:"features"`
	LicenseType string     `json:"licenseType"`
	ActivatedAt time.Time  `json:"activatedAt"`
	Expiration  *time.Time `json:"expiration,omitempty"`
}

// LicenseRecord — запись лицензии, сохраняемая в сессии под ключом user_license.
type LicenseRecord struct {
	Email       string     `json:"email"`
	LicenseKey  string     `json:"licenseKey"`
	Features    []string   `json:"features"`
	ActivatedAt time.Time  `json:"activatedAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}
