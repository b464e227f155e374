package models

// Purchase — данные оформленной покупки, сохраняемые в сессии под ключом purchaseData.
type Purchase struct {
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	TotalPrice     float64  `json:"totalPrice"`
	SelectedAddOns []string `json:"selectedAddOns"`
	ReferenceID    string   `json:"referenceId"`
}
