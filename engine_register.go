package authward

import (
	"context"

	"github.com/authward/authward/internal/flows"
)

// Register creates an account through the user directory and logs it in,
// returning the new subject and its first token pair. The password is
// hashed before it reaches the directory. A taken identifier returns
// [ErrDuplicateIdentifier].
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if !e.config.Register.Enabled {
		return nil, ErrRegistrationDisabled
	}

	role := req.Role
	if role == "" {
		role = e.config.Register.DefaultRole
	}

	result := flows.RunRegister(ctx, req.Identifier, req.Password, role, e.registerDeps(req.Profile))

	switch result.Failure {
	case flows.RegisterFailureNone:
		e.metricInc(MetricRegisterSuccess)
		e.metricInc(MetricTokenPairIssued)
		e.emitAudit(ctx, auditEventRegisterSuccess, true, result.SubjectID, result.RecordID, nil, nil)
		return &RegisterResult{
			SubjectID: result.SubjectID,
			Role:      role,
			Tokens: TokenPair{
				AccessToken:  result.AccessToken,
				RefreshToken: result.RefreshToken,
			},
		}, nil
	case flows.RegisterFailureDuplicate:
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditEventRegisterDuplicate, false, "", "", ErrDuplicateIdentifier, nil)
		return nil, ErrDuplicateIdentifier
	case flows.RegisterFailureValidation, flows.RegisterFailureHash:
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", "", ErrRegistrationInvalid, nil)
		return nil, ErrRegistrationInvalid
	default:
		e.emitAudit(ctx, auditEventRegisterFailure, false, result.SubjectID, "", result.Err, nil)
		return nil, result.Err
	}
}

func (e *Engine) registerDeps(profile map[string]string) flows.RegisterDeps {
	return flows.RegisterDeps{
		HashPassword: e.hasher.Hash,
		CreateUser: func(ctx context.Context, identifier, passwordHash, role string) (flows.UserRecord, error) {
			return e.createUser(ctx, identifier, passwordHash, role, profile)
		},
		Duplicate: ErrDuplicateIdentifier,

		Issue: e.issue,
	}
}

func (e *Engine) createUser(ctx context.Context, identifier, passwordHash, role string, profile map[string]string) (flows.UserRecord, error) {
	user, err := e.directory.Create(ctx, CreateUserInput{
		Identifier:   identifier,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       StatusActive,
		Profile:      profile,
	})
	if err != nil {
		return flows.UserRecord{}, err
	}
	return flowUser(user), nil
}
