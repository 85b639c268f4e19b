package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "fintrack/internal/errors"
)

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = errors.New("remote: not found")

// Error is a failed remote call. StatusCode is zero when the request never
// got a response (DNS, refused connection, timeout).
type Error struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsPermanent reports whether retrying err unchanged can never succeed: a
// 4xx answer other than 401 (token may be refreshed), 408 or 429. Transport
// failures and 5xx answers are transient.
func IsPermanent(err error) bool {
	var re *Error
	if !errors.As(err, &re) || re.StatusCode == 0 {
		return false
	}
	switch re.StatusCode {
	case http.StatusUnauthorized, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return re.StatusCode >= 400 && re.StatusCode < 500
}

// IsUnreachable reports whether err is a transport failure.
func IsUnreachable(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.StatusCode == 0
}

// errorBody covers the error shapes the backend family emits.
type errorBody struct {
	Error            json.RawMessage `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Code             json.RawMessage `json:"code"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
}

func decodeError(op string, resp *http.Response) *Error {
	e := &Error{Op: op, StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(raw) == 0 {
		return e
	}

	var body errorBody
	if json.Unmarshal(raw, &body) != nil {
		return e
	}

	var nested struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	var flat string
	switch {
	case json.Unmarshal(body.Error, &nested) == nil && nested.Code != "":
		e.Code, e.Message = nested.Code, nested.Message
	case json.Unmarshal(body.Error, &flat) == nil && flat != "":
		e.Code, e.Message = flat, body.ErrorDescription
	default:
		var code string
		if json.Unmarshal(body.Code, &code) == nil {
			e.Code = code
		}
		e.Message = body.Message
	}
	if e.Message == "" {
		e.Message = body.Msg
	}
	return e
}

// authError maps a failed auth call onto the error a login form shows.
func authError(err error) error {
	var re *Error
	if !errors.As(err, &re) {
		return err
	}
	if re.StatusCode == 0 {
		return apperrors.Wrap(apperrors.ErrOffline, err)
	}

	switch re.Code {
	case "INVALID_CREDENTIALS", "invalid_grant", "invalid_credentials":
		return apperrors.Wrap(apperrors.ErrInvalidCredentials, err)
	case "INVALID_OTP", "otp_expired":
		return apperrors.Wrap(apperrors.ErrInvalidOTP, err)
	case "EMAIL_NOT_CONFIRMED", "email_not_confirmed":
		return apperrors.Wrap(apperrors.ErrEmailNotConfirmed, err)
	case "ACCOUNT_LOCKED":
		return apperrors.Wrap(apperrors.ErrAccountLocked, err)
	case "DUPLICATE_EMAIL", "user_already_exists":
		return apperrors.Wrap(apperrors.ErrDuplicateEmail, err)
	}

	switch re.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if re.Message != "" {
			appErr := apperrors.WithMessage(apperrors.ErrInvalidInput, re.Message)
			appErr.Internal = err
			return appErr
		}
		return apperrors.Wrap(apperrors.ErrInvalidInput, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.Wrap(apperrors.ErrInvalidCredentials, err)
	case http.StatusTooManyRequests:
		return apperrors.Wrap(apperrors.ErrRateLimited, err)
	}
	return err
}
