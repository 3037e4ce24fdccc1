package verifycode

type Input struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type Output struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}
