package chat

import (
	"dm-lab/errors"
	stderrors "errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateSend checks a send command before any store access.
// maxContentLength is counted in runes; zero disables the check.
func ValidateSend(cmd SendMessageCommand, maxContentLength int) error {
	cmd.SenderID = strings.TrimSpace(cmd.SenderID)
	cmd.ReceiverID = strings.TrimSpace(cmd.ReceiverID)
	cmd.Content = strings.TrimSpace(cmd.Content)
	if err := validate.Struct(cmd); err != nil {
		return toValidationError(err)
	}
	if maxContentLength > 0 && utf8.RuneCountInString(cmd.Content) > maxContentLength {
		return fmt.Errorf("%w: %d characters allowed", errors.ErrContentTooLong, maxContentLength)
	}
	return nil
}

func ValidateFetch(cmd FetchMessagesCommand) error {
	cmd.SenderID = strings.TrimSpace(cmd.SenderID)
	cmd.ReceiverID = strings.TrimSpace(cmd.ReceiverID)
	return toValidationError(validate.Struct(cmd))
}

func ValidateMarkRead(cmd MarkReadCommand) error {
	cmd.SenderID = strings.TrimSpace(cmd.SenderID)
	cmd.ReceiverID = strings.TrimSpace(cmd.ReceiverID)
	return toValidationError(validate.Struct(cmd))
}

func ValidateList(cmd ListConversationsCommand) error {
	cmd.UserID = strings.TrimSpace(cmd.UserID)
	return toValidationError(validate.Struct(cmd))
}

// toValidationError maps the first failing field onto the matching sentinel.
func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	fe := fieldErrors[0]
	switch {
	case fe.Tag() == "nefield":
		return errors.ErrSameParticipant
	case fe.Field() == "Content":
		return errors.ErrEmptyContent
	default:
		return fmt.Errorf("%w (%s)", errors.ErrEmptyParticipant, fe.Field())
	}
}
