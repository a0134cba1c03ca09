package model

// Recipient is who a notification is addressed to.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (c CustomerInfo) Recipient() Recipient {
	return Recipient{Email: c.Email, Name: c.FullName()}
}
