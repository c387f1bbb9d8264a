package chat

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/immolinksenegal/chat-gateway/internal/api"
)

// Client-facing validation messages. Each rule fails with its own message
// so the front-end can show the user what to fix.
const (
	MsgInvalidFormat    = "format de messages invalide"
	MsgCountOutOfRange  = "nombre de messages hors limites"
	MsgInvalidStructure = "structure de message invalide"
	MsgInvalidRole      = "rôle de message invalide"
	MsgContentTooLong   = "message trop long ou invalide"

	// Denial messages for the two rate-limit scopes. Each names the wait
	// matching the retryAfter the response carries.
	MsgRateLimitedHour  = "Trop de requêtes. Veuillez réessayer dans une heure."
	MsgRateLimitedBurst = "Trop de requêtes. Veuillez réessayer dans une minute."
)

// Validator applies the conversation rules in a fixed order: envelope shape,
// message count, then per-message structure, role and content length.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate returns nil for an acceptable conversation, or an *api.AppError
// carrying a 400 and the message for the first failed rule.
func (v *Validator) Validate(req *Request) error {
	if err := v.validateEnvelope(req); err != nil {
		return err
	}

	for _, m := range req.Messages {
		if m.Role == "" || m.Content == "" {
			return api.NewValidationError(MsgInvalidStructure)
		}
		if m.Role != "user" && m.Role != "assistant" {
			return api.NewValidationError(MsgInvalidRole)
		}
		if len(m.Content) > MaxContentLength {
			return api.NewValidationError(MsgContentTooLong)
		}
	}

	return nil
}

func (v *Validator) validateEnvelope(req *Request) error {
	err := v.validate.StructPartial(req, "Messages")
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return api.ErrBadRequest
	}

	// Only the envelope itself matters here; per-message rules run after,
	// in their own order.
	for _, ve := range verrs {
		if ve.StructNamespace() != "Request.Messages" {
			continue
		}
		switch ve.Tag() {
		case "min", "max":
			return api.NewValidationError(MsgCountOutOfRange)
		case "required":
			// A present-but-empty array fails the count rule, not the
			// format rule; only an absent field is a format problem.
			if req.Messages != nil {
				return api.NewValidationError(MsgCountOutOfRange)
			}
			return api.NewValidationError(MsgInvalidFormat)
		default:
			return api.NewValidationError(MsgInvalidFormat)
		}
	}
	return nil
}
