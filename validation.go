package walks

import (
	stderrors "errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

var errInvalidPhone = stderrors.New("must be a valid phone number")

// phoneNumber validates the value as a parseable, valid phone number.
// Empty values pass; pair with validation.Required when the field is
// mandatory.
var phoneNumber = validation.By(func(value interface{}) error {
	raw, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}

	str, _ := raw.(string)
	if str == "" {
		return nil
	}

	num, err := phonenumbers.Parse(str, "US")
	if err != nil {
		return errInvalidPhone
	}

	if !phonenumbers.IsValidNumber(num) {
		return errInvalidPhone
	}

	return nil
})

// Validate will run validation rules
func (e RegisterUserMessage) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&e,
			validation.Field(
				&e.Email,
				validation.Required,
				is.Email,
			),
			validation.Field(
				&e.Password,
				validation.Required,
				validation.Length(8, 72),
			),
			validation.Field(
				&e.Username,
				validation.Length(0, 100),
			),
			validation.Field(
				&e.Phone,
				phoneNumber,
			),
		)
	}, "Invalid registration payload")
}

// LoginMessage carries login credentials from the transport layer.
type LoginMessage struct {
	Identifier string `json:"identifier" form:"identifier"`
	Password   string `json:"password" form:"password"`
}

func (e LoginMessage) Type() string { return "auth.login" }

// Validate will run validation rules
func (e LoginMessage) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&e,
			validation.Field(
				&e.Identifier,
				validation.Required,
			),
			validation.Field(
				&e.Password,
				validation.Required,
			),
		)
	}, "Invalid login request payload")
}
