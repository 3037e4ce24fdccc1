package sendverificationcode

import "time"

type Input struct {
	Email string `json:"email"`
}

type Output struct {
	Email     string    `json:"email"`
	CodeSent  bool      `json:"codeSent"`
	ExpiresAt time.Time `json:"expiresAt"`
}
