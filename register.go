package authstate

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/nyaruka/phonenumbers"
)

// RegisterPayload is the form payload for account registration
type RegisterPayload struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	Mobile          string `json:"mobile" form:"mobile"`
}

func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(8, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// ValidateStringEquals builds an ozzo rule asserting two fields match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("value does not match", errors.CategoryValidation)
		}
		return nil
	}
}

// RegistrationOutcome acknowledges a registration request. The session is
// not established; the account stays unverified until the emailed ticket
// is consumed.
type RegistrationOutcome struct {
	Message string
	// CorrelationID is a deterministic identifier derived from the email,
	// stable across retries of the same registration
	CorrelationID string
}

// Register validates and submits a registration for the given domain. The
// mobile number, when present, is normalized to E.164 before submission.
func (f *Flow) Register(ctx context.Context, domain SessionDomain, payload RegisterPayload) (*RegistrationOutcome, error) {
	if !domain.Valid() {
		return nil, errors.New("unknown session domain", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid registration payload").
			WithCode(errors.CodeBadRequest)
	}

	mobile := ""
	if payload.Mobile != "" {
		normalized, err := normalizeMobile(payload.Mobile)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation, "invalid mobile number").
				WithCode(errors.CodeBadRequest)
		}
		mobile = normalized
	}

	correlation := ""
	if id, err := hashid.NewUUID(payload.Email); err == nil {
		correlation = id.String()
	}

	res, err := f.client.Register(ctx, domain, RegisterRequest{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Mobile:   mobile,
	})
	if err != nil {
		f.logger.Error("Registration failed", "domain", domain, "correlation", correlation, "error", err)
		return nil, err
	}

	f.logger.Info("Registration accepted, verification email pending", "correlation", correlation)

	return &RegistrationOutcome{
		Message:       res.Message,
		CorrelationID: correlation,
	}, nil
}

func normalizeMobile(raw string) (string, error) {
	num, err := phonenumbers.Parse(raw, "US")
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", errors.New("mobile number is not valid", errors.CategoryValidation)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
