package paymentprovider

// InitiatePaymentRequest — запрос на создание платежа.
// Amount — итоговая цена, умноженная на 100 и округлённая.
type InitiatePaymentRequest struct {
	Amount                 int64    `json:"amount"`
	Description            string   `json:"description"`
	AcceptedPaymentMethods []string `json:"acceptedPaymentMethods"`
	FirstName              string   `json:"firstName"`
	LastName               string   `json:"lastName"`
	PhoneNumber            string   `json:"phoneNumber"`
	Email                  string   `json:"email"`
	ReferenceID            string   `json:"referenceId"`
}

// InitiatePaymentResponse — ответ платёжного сервиса.
type InitiatePaymentResponse struct {
	PayURL     string `json:"payUrl"`
	PaymentRef string `json:"paymentRef"`
}
