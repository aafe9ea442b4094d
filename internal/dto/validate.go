package dto

import "github.com/go-playground/validator/v10"

var validate = validator.New()

func (r *TelegramAuthRequest) Validate() error {
	return validate.Struct(r)
}

func (r *CreateCheckoutRequest) Validate() error {
	return validate.Struct(r)
}
