package models

// Entitlement is the account tier gating premium-only sync.
type Entitlement string

const (
	EntitlementFree    Entitlement = "free"
	EntitlementPremium Entitlement = "premium"
)

// Session is the process-wide authenticated state, alive from login until
// logout or invalidation. The credential is single-shot: there is no
// refresh, a rejected token forces a new login.
type Session struct {
	AccessToken string
	UserID      int64
	UserName    string
	Entitlement Entitlement
}

// CanSync reports whether this session is allowed to start a sync attempt.
func (s *Session) CanSync() bool {
	return s != nil && s.Entitlement == EntitlementPremium
}
