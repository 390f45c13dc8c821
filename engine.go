package authward

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/authward/authward/internal/audit"
	"github.com/authward/authward/internal/flows"
	"github.com/authward/authward/password"
	"github.com/authward/authward/store"
	"github.com/authward/authward/token"
)

// Engine is the authentication engine. Construct one via [Builder]; its
// configuration and dependencies are immutable after Build, and all
// methods are safe for concurrent use.
type Engine struct {
	config    Config
	codec     *token.Codec
	hasher    *password.Hasher
	store     store.TokenStore
	directory UserDirectory
	audit     *audit.Dispatcher
	metrics   *Metrics
}

// Close shuts down the audit dispatcher, draining buffered events. It does
// not close the token store or the user directory: the engine does not own
// them.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped returns the number of audit events dropped because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login verifies the identifier and password against the user directory
// and, on success, issues an access/refresh pair. Unknown identifiers and
// wrong passwords both return [ErrInvalidCredentials]; a disabled account
// returns [ErrAccountDisabled].
func (e *Engine) Login(ctx context.Context, identifier, password string) (string, string, error) {
	if e == nil {
		return "", "", ErrEngineNotReady
	}

	result := flows.RunLogin(ctx, identifier, password, e.loginDeps())

	switch result.Failure {
	case flows.LoginFailureNone:
		e.metricInc(MetricLoginSuccess)
		e.metricInc(MetricTokenPairIssued)
		e.emitAudit(ctx, auditEventLoginSuccess, true, result.SubjectID, result.RecordID, nil, nil)
		return result.AccessToken, result.RefreshToken, nil
	case flows.LoginFailureCredentials:
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, result.SubjectID, "", ErrInvalidCredentials, nil)
		return "", "", ErrInvalidCredentials
	case flows.LoginFailureDisabled:
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, result.SubjectID, "", result.Err, nil)
		return "", "", result.Err
	default:
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, result.SubjectID, "", result.Err, nil)
		return "", "", result.Err
	}
}

// Refresh rotates a refresh token: the presented token is spent and a new
// pair is issued. Any token the engine will not rotate, including a
// detected replay, returns [ErrInvalidOrExpiredToken]. Replays are
// distinguished only in metrics and audit, never in the returned error.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if e == nil {
		return "", "", ErrEngineNotReady
	}

	result := flows.RunRefresh(ctx, refreshToken, e.refreshDeps())

	switch result.Failure {
	case flows.RefreshFailureNone:
		e.metricInc(MetricRefreshSuccess)
		e.metricInc(MetricTokenPairIssued)
		e.emitAudit(ctx, auditEventRefreshSuccess, true, result.SubjectID, result.RecordID, nil, nil)
		return result.AccessToken, result.RefreshToken, nil
	case flows.RefreshFailureReuse:
		e.metricInc(MetricRefreshReuseDetected)
		e.emitAudit(ctx, auditEventRefreshReuse, false, result.SubjectID, result.RecordID, ErrInvalidOrExpiredToken, nil)
		return "", "", ErrInvalidOrExpiredToken
	case flows.RefreshFailureToken, flows.RefreshFailureSubject:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, result.SubjectID, result.RecordID, ErrInvalidOrExpiredToken, nil)
		return "", "", ErrInvalidOrExpiredToken
	default:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, result.SubjectID, result.RecordID, result.Err, nil)
		return "", "", result.Err
	}
}

// Logout revokes the record behind the presented refresh token. It is
// idempotent and always succeeds from the caller's point of view: a token
// that does not parse, or whose record is missing or already revoked, is a
// no-op success. Only store failures surface as errors.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	result := flows.RunLogout(ctx, refreshToken, e.logoutDeps())
	if result.Failure != flows.LogoutFailureNone {
		e.emitAudit(ctx, auditEventLogout, false, result.SubjectID, "", result.Err, nil)
		return result.Err
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, result.SubjectID, "", nil, nil)
	return nil
}

// LogoutEverywhere revokes every live refresh token belonging to the
// subject. A subject with no live tokens is already logged out everywhere,
// so the call succeeds with nothing to do.
func (e *Engine) LogoutEverywhere(ctx context.Context, subjectID string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	n, err := flows.RunLogoutAll(ctx, subjectID, e.logoutDeps())
	if err != nil {
		e.emitAudit(ctx, auditEventLogoutAll, false, subjectID, "", err, nil)
		return err
	}

	e.metricInc(MetricLogoutAll)
	e.emitAudit(ctx, auditEventLogoutAll, true, subjectID, "", nil, func() map[string]string {
		return map[string]string{"revoked": strconv.FormatInt(n, 10)}
	})
	return nil
}

// ValidateAccessToken verifies an access token's signature, expiry, and
// issuer and returns its claims. It is pure computation: no store or
// directory access, so revocation between issuance and expiry is not
// visible here. Any failure returns nil.
func (e *Engine) ValidateAccessToken(tokenStr string) *token.Claims {
	if e == nil {
		return nil
	}

	start := time.Now()
	claims, err := e.codec.ParseAccess(tokenStr)
	e.metrics.Observe(MetricValidateLatency, time.Since(start))

	if err != nil {
		e.metricInc(MetricValidateFailure)
		return nil
	}

	e.metricInc(MetricValidateSuccess)
	return claims
}

// PurgeExpired removes expired token records from the store and returns
// the number removed. Intended for periodic maintenance, not the request
// path.
func (e *Engine) PurgeExpired(ctx context.Context) (int64, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}

	n, err := e.store.PurgeExpired(ctx, time.Now())
	if err != nil {
		e.emitAudit(ctx, auditEventPurge, false, "", "", err, nil)
		return 0, err
	}

	if n > 0 {
		e.metrics.Add(MetricPurgeDeleted, uint64(n))
	}
	e.emitAudit(ctx, auditEventPurge, true, "", "", nil, func() map[string]string {
		return map[string]string{"deleted": strconv.FormatInt(n, 10)}
	})
	return n, nil
}

func (e *Engine) statusError(status uint8) error {
	if AccountStatus(status) == StatusActive {
		return nil
	}
	return ErrAccountDisabled
}

func (e *Engine) lookupByIdentifier(ctx context.Context, identifier string) (flows.UserRecord, bool, error) {
	user, err := e.directory.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrSubjectNotFound) {
			return flows.UserRecord{}, false, nil
		}
		return flows.UserRecord{}, false, err
	}
	return flowUser(user), true, nil
}

func (e *Engine) lookupByID(ctx context.Context, subjectID string) (flows.UserRecord, bool, error) {
	user, err := e.directory.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrSubjectNotFound) {
			return flows.UserRecord{}, false, nil
		}
		return flows.UserRecord{}, false, err
	}
	return flowUser(user), true, nil
}

func flowUser(u UserRecord) flows.UserRecord {
	return flows.UserRecord{
		SubjectID:    u.SubjectID,
		Identifier:   u.Identifier,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
		Status:       uint8(u.Status),
	}
}

func (e *Engine) issueDeps() flows.IssueDeps {
	return flows.IssueDeps{
		SignAccess:  e.codec.SignAccess,
		SignRefresh: e.codec.SignRefresh,
		NewRecordID: uuid.NewString,
		RefreshTTL:  e.codec.RefreshTTL,
		Now:         time.Now,
		SaveRecord:  e.store.Save,
	}
}

func (e *Engine) issue(ctx context.Context, user flows.UserRecord) flows.IssueResult {
	return flows.RunIssue(ctx, user, e.issueDeps())
}

func (e *Engine) loginDeps() flows.LoginDeps {
	return flows.LoginDeps{
		GetUserByIdentifier: e.lookupByIdentifier,
		VerifyPassword:      e.hasher.Verify,
		DummyVerify:         e.hasher.DummyVerify,
		AccountStatusError:  e.statusError,

		PasswordUpgradeOnLogin: e.config.Password.UpgradeOnLogin,
		PasswordNeedsUpgrade:   e.hasher.NeedsRehash,
		HashPassword:           e.hasher.Hash,
		UpdatePasswordHash:     e.directory.UpdatePasswordHash,
		Warn:                   log.Printf,

		Issue: e.issue,
	}
}

func (e *Engine) refreshDeps() flows.RefreshDeps {
	return flows.RefreshDeps{
		ParseRefresh:       e.codec.ParseRefresh,
		FindRecord:         e.store.Find,
		RevokeRecord:       e.store.Revoke,
		GetUserByID:        e.lookupByID,
		AccountStatusError: e.statusError,
		Now:                time.Now,
		NotFound:           store.ErrNotFound,

		Issue: e.issue,
	}
}

func (e *Engine) logoutDeps() flows.LogoutDeps {
	return flows.LogoutDeps{
		ParseRefresh:        e.codec.ParseRefresh,
		RevokeRecord:        e.store.Revoke,
		RevokeAllForSubject: e.store.RevokeAllForSubject,
		NotFound:            store.ErrNotFound,
	}
}
