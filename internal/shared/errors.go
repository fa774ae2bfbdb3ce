package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. Unknown user, wrong
	// password and role mismatch all collapse into this error.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAdminSignupDisabled rejects self-service creation of Admin accounts.
	ErrAdminSignupDisabled = errors.New("admin signup disabled")
	// ErrUserAlreadyExists occurs when the username is taken under any role.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUnknownRole occurs when a role name is not part of the permission table.
	ErrUnknownRole = errors.New("unknown role")
	// ErrPermissionDenied rejects an action outside the session role's permissions.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNoSession occurs when an operation requires a logged in session.
	ErrNoSession = errors.New("no active session")
	// ErrStorage wraps persistence read/write failures.
	ErrStorage = errors.New("storage io error")
	// ErrAuditGap marks a committed mutation whose audit entry could not be written.
	ErrAuditGap = errors.New("audit entry not recorded")
	// ErrRecordNotFound indicates no record carries the requested id.
	ErrRecordNotFound = errors.New("record not found")
	// ErrPasswordTooLong rejects passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password too long")
	// ErrEmptyContent rejects records without content.
	ErrEmptyContent = errors.New("data cannot be empty")
)

// UserSafeMessage returns a message that can be shown to the caller without
// leaking storage details.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials or role"
	case errors.Is(err, ErrAdminSignupDisabled):
		return "Admin signup disabled"
	case errors.Is(err, ErrUserAlreadyExists):
		return "User already exists"
	case errors.Is(err, ErrUnknownRole):
		return "Unknown role"
	case errors.Is(err, ErrPasswordTooLong):
		return "Password must be at most 72 bytes"
	case errors.Is(err, ErrPermissionDenied):
		return "Permission denied"
	case errors.Is(err, ErrNoSession):
		return "Login required"
	case errors.Is(err, ErrEmptyContent):
		return "Data cannot be empty"
	case errors.Is(err, ErrRecordNotFound), errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrAuditGap):
		return "Change saved but the audit entry could not be written"
	default:
		return "Something went wrong, please try again"
	}
}
