package domain

import "time"

// AuditEntry is an immutable record of a security-relevant action. Entries are
// append-only; there is no update or delete path.
type AuditEntry struct {
	ID            string    `json:"id"`
	Actor         string    `json:"actor"`
	Action        string    `json:"action"`
	Detail        string    `json:"detail"`
	OriginAddress string    `json:"origin_address"`
	Timestamp     time.Time `json:"timestamp"`
}

// Audit action tags used by the transport layer. Failure variants append
// "_error" via ErrorAction.
const (
	ActionRegister         = "register"
	ActionLogin            = "login"
	ActionSuccessfulLogin  = "successful_login"
	ActionFailedLogin      = "failed_login"
	ActionVerifyEmail      = "verify_email"
	ActionPasswordResetReq = "password_reset_request"
	ActionPasswordReset    = "password_reset"
	ActionCreateUser       = "create_user"
	ActionUpdateUser       = "update_user"
	ActionDeleteUser       = "delete_user"
	ActionUpdateProfile    = "user_update_profile"
	ActionViewAuditLogs    = "view_audit_logs"
	ActionViewUsers        = "view_users"
)

// ErrorAction returns the audit tag for a failed variant of action.
func ErrorAction(action string) string {
	return action + "_error"
}
