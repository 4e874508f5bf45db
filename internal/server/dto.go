package server

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ItemInput is the request body for creating or renaming an item. The
// operation type comes from the route, not the body.
type ItemInput struct {
	Name string `json:"name"`
}

// Validate implements the request validation rules.
func (i ItemInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, 100),
		),
	)
}

// OperationInput is the request body for creating or updating an
// operation.
type OperationInput struct {
	Date   time.Time `json:"date"`
	ItemID int       `json:"itemId"`
	Sum    float64   `json:"sum"`
}

// Validate implements the request validation rules.
func (o OperationInput) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Date, validation.Required.Error("date is required")),
		validation.Field(&o.ItemID, validation.Required.Error("item id is required")),
	)
}

// SignupInput is the request body for account creation.
type SignupInput struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}

// Validate implements the request validation rules.
func (s SignupInput) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Email,
			validation.Required.Error("email is required"),
			is.EmailFormat,
		),
		validation.Field(&s.Password,
			validation.Required.Error("password is required"),
			validation.Length(6, 0).Error("password must be at least 6 characters long"),
		),
		validation.Field(&s.PasswordConfirmation,
			validation.Required.Error("password confirmation is required"),
			validation.In(s.Password).Error("password confirmation does not match"),
		),
	)
}

// SigninInput is the request body for authentication.
type SigninInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements the request validation rules.
func (s SigninInput) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Email,
			validation.Required.Error("email is required"),
			is.EmailFormat,
		),
		validation.Field(&s.Password, validation.Required.Error("password is required")),
	)
}

// TokenResponse is returned by the identity endpoints.
type TokenResponse struct {
	Token    string `json:"token"`
	UserName string `json:"userName"`
}
