// Package payment собирает заказ лицензии: каталог дополнений, итоговую
// стоимость и инициацию платежа во внешнем платёжном сервисе.
package payment

import (
	"errors"
	"fmt"
	"math"
)

// Currency — валюта цен каталога.
const Currency = "TND"

// ErrUnknownAddOn возвращается для дополнения, которого нет в каталоге.
var ErrUnknownAddOn = errors.New("unknown add-on")

// Product — продаваемая лицензия.
type Product struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	MaxDevices   int     `json:"maxDevices"`
	DurationDays int     `json:"durationDays"`
	GracePeriod  string  `json:"gracePeriod"`
	Price        float64 `json:"price"`
}

// AddOn — дополнение к лицензии.
type AddOn struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// License — единственная лицензия каталога.
var License = Product{
	Name:         "Pro License",
	Description:  "Access all premium features with unlimited usage and regular updates. Perfect for professional use with comprehensive functionality.",
	MaxDevices:   5,
	DurationDays: 365,
	GracePeriod:  "30 days",
	Price:        299.99,
}

// AddOns — дополнения в порядке каталога.
var AddOns = []AddOn{
	{ID: "cloud-backup", Name: "Cloud Backup", Description: "Store your data securely in the cloud with automatic backups", Price: 45},
	{ID: "advanced-analytics", Name: "Advanced Analytics", Description: "Get detailed insights and reporting with advanced analytics", Price: 75},
	{ID: "priority-support", Name: "Priority Support", Description: "24/7 priority support with dedicated account manager", Price: 60},
	{ID: "custom-themes", Name: "Custom Themes", Description: "Access to premium themes and customization options", Price: 30},
}

// FindAddOn ищет дополнение по идентификатору.
func FindAddOn(id string) (AddOn, bool) {
	for _, a := range AddOns {
		if a.ID == id {
			return a, true
		}
	}
	return AddOn{}, false
}

// ValidateAddOns проверяет, что все дополнения есть в каталоге.
func ValidateAddOns(ids []string) error {
	for _, id := range ids {
		if _, ok := FindAddOn(id); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAddOn, id)
		}
	}
	return nil
}

// Summary — состав и стоимость заказа.
type Summary struct {
	License     Product `json:"license"`
	AddOns      []AddOn `json:"addOns"`
	Total       float64 `json:"total"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
}

// Summarize считает стоимость заказа. Неизвестные дополнения пропускаются;
// дополнения перечисляются в порядке каталога.
func Summarize(selected []string) Summary {
	chosen := make(map[string]bool, len(selected))
	for _, id := range selected {
		chosen[id] = true
	}

	s := Summary{
		License:  License,
		AddOns:   []AddOn{},
		Total:    License.Price,
		Currency: Currency,
	}
	for _, a := range AddOns {
		if chosen[a.ID] {
			s.AddOns = append(s.AddOns, a)
			s.Total += a.Price
		}
	}
	s.Amount = int64(math.Round(s.Total * 100))
	s.Description = "Software License Purchase - Pro License"
	if n := len(s.AddOns); n > 0 {
		s.Description += fmt.Sprintf(" + %d add-ons", n)
	}
	return s
}
