package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upwardright/rebalance/internal/apperrors"
	"github.com/upwardright/rebalance/internal/models"
)

// SessionState is the lifecycle phase of an account session.
type SessionState string

const (
	StateIdle               SessionState = "idle"
	StateLinkResolving      SessionState = "link_resolving"
	StateCredentialChecking SessionState = "credential_checking"
	StateAwaitingPassword   SessionState = "awaiting_password"
	StateBalanceFetching    SessionState = "balance_fetching"
	StateReady              SessionState = "ready"
	StateFailed             SessionState = "failed"
)

// SessionStatus is the externally visible view of a session.
type SessionStatus struct {
	State         SessionState `json:"state"`
	AccountNumber string       `json:"account_number,omitempty"`
	MatchStrategy string       `json:"match_strategy,omitempty"`
	Prompt        string       `json:"prompt,omitempty"`
	Failure       string       `json:"failure,omitempty"`
}

// AccountSession walks one selected account from link resolution through
// credential lookup to a normalized balance snapshot. A single session
// serves one account at a time; selecting another account or cancelling
// invalidates any fetch still in flight.
type AccountSession struct {
	linker  AccountLinker
	creds   CredentialStore
	balance BalanceService
	logger  *zap.Logger

	mu              sync.Mutex
	state           SessionState
	account         *models.BrokerageAccount
	institutionCode string
	handle          models.LinkHandle
	strategy        MatchStrategy
	generation      string
	snapshot        *models.BalanceSnapshot
	failure         string
	prompt          string
}

// NewAccountSession creates a session in the idle state.
func NewAccountSession(linker AccountLinker, creds CredentialStore, balance BalanceService, logger *zap.Logger) *AccountSession {
	return &AccountSession{
		linker:  linker,
		creds:   creds,
		balance: balance,
		logger:  logger,
		state:   StateIdle,
	}
}

// Select starts a session for the account at the given listing position.
// It resolves the link handle, then either reuses a cached password to
// fetch the balance immediately or parks in awaiting_password.
func (s *AccountSession) Select(ctx context.Context, account *models.BrokerageAccount, position int, candidates []models.LinkHandle) (SessionStatus, error) {
	if err := account.Validate(); err != nil {
		return s.Status(), err
	}

	s.mu.Lock()
	s.reset()
	s.account = account
	s.institutionCode = models.InstitutionCodeForName(account.InstitutionName)
	s.state = StateLinkResolving
	generation := s.generation

	handle, strategy, err := s.linker.Resolve(account, position, candidates)
	if err != nil {
		s.failLocked(generation, "no linked brokerage login matches this account")
		status := s.statusLocked()
		s.mu.Unlock()
		return status, err
	}
	s.handle = handle
	s.strategy = strategy
	s.state = StateCredentialChecking
	s.mu.Unlock()

	cred, err := s.creds.Get(ctx, account.AccountNumber, s.institutionCode)
	switch {
	case err == nil:
		return s.fetch(ctx, generation, cred.Password, false)
	case errors.Is(err, apperrors.ErrNotFound):
		s.mu.Lock()
		if s.generation == generation {
			s.state = StateAwaitingPassword
			s.prompt = "enter the account password"
		}
		status := s.statusLocked()
		s.mu.Unlock()
		return status, nil
	default:
		// The cache being down is not fatal; the user can still type the
		// password in.
		s.logger.Warn("credential lookup failed, prompting instead",
			zap.String("account", account.MaskedNumber()),
			zap.Error(err))
		s.mu.Lock()
		if s.generation == generation {
			s.state = StateAwaitingPassword
			s.prompt = "enter the account password"
		}
		status := s.statusLocked()
		s.mu.Unlock()
		return status, nil
	}
}

// SubmitPassword continues an awaiting_password session with a password
// typed by the user. On a successful fetch the password is cached for
// future sessions.
func (s *AccountSession) SubmitPassword(ctx context.Context, password string) (SessionStatus, error) {
	s.mu.Lock()
	if s.state != StateAwaitingPassword {
		status := s.statusLocked()
		s.mu.Unlock()
		return status, fmt.Errorf("session is %s, not awaiting a password", status.State)
	}
	if password == "" {
		s.prompt = "password must not be empty"
		status := s.statusLocked()
		s.mu.Unlock()
		return status, errors.New("password must not be empty")
	}
	generation := s.generation
	s.mu.Unlock()

	return s.fetch(ctx, generation, password, true)
}

// Cancel abandons the current account and returns the session to idle.
// Any fetch still in flight is orphaned and its outcome discarded.
func (s *AccountSession) Cancel() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return s.statusLocked()
}

// Status reports the current phase without blocking on in-flight work.
func (s *AccountSession) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// Snapshot returns the normalized balance once the session is ready.
func (s *AccountSession) Snapshot() (*models.BalanceSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady || s.snapshot == nil {
		return nil, fmt.Errorf("session is %s, no balance available", s.state)
	}
	return s.snapshot, nil
}

// Account returns the currently selected account, or nil when idle.
func (s *AccountSession) Account() *models.BrokerageAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// fetch performs the balance request outside the lock and applies the
// outcome only if the session has not moved on (same generation).
func (s *AccountSession) fetch(ctx context.Context, generation, password string, fresh bool) (SessionStatus, error) {
	s.mu.Lock()
	if s.generation != generation {
		status := s.statusLocked()
		s.mu.Unlock()
		return status, nil
	}
	s.state = StateBalanceFetching
	account := s.account
	institutionCode := s.institutionCode
	handle := s.handle
	s.mu.Unlock()

	req := &models.BalanceRequest{
		InstitutionCode: institutionCode,
		ConnectedID:     handle.ConnectedID,
		AccountNumber:   account.AccountNumber,
		Password:        password,
	}
	snapshot, err := s.balance.Fetch(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		// Cancelled or re-selected while the request was in flight.
		return s.statusLocked(), nil
	}

	switch {
	case err == nil:
		s.becomeReady(snapshot, account, institutionCode, password, fresh)
		return s.statusLocked(), nil

	case errors.Is(err, apperrors.ErrUnrecognizedShape):
		// The gateway accepted the password but returned a payload shape
		// we cannot read. Surface the empty snapshot rather than failing
		// the whole session.
		s.logger.Warn("balance payload shape not recognized",
			zap.String("account", account.MaskedNumber()))
		s.becomeReady(snapshot, account, institutionCode, password, fresh)
		return s.statusLocked(), nil

	case apperrors.IsAuthFailure(err):
		var rejected *apperrors.RemoteRejectedError
		errors.As(err, &rejected)
		s.state = StateAwaitingPassword
		s.prompt = rejected.Message
		if s.prompt == "" {
			s.prompt = "the account password was rejected"
		}
		s.logger.Info("balance fetch rejected, re-prompting",
			zap.String("account", account.MaskedNumber()),
			zap.String("code", rejected.Code))
		return s.statusLocked(), nil

	case errors.Is(err, apperrors.ErrTimeout):
		s.failLocked(generation, "the balance request timed out")
		return s.statusLocked(), err

	default:
		var rejected *apperrors.RemoteRejectedError
		if errors.As(err, &rejected) {
			s.failLocked(generation, rejected.Message)
		} else {
			s.failLocked(generation, "the balance request failed")
		}
		s.logger.Error("balance fetch failed",
			zap.String("account", account.MaskedNumber()),
			zap.Error(err))
		return s.statusLocked(), err
	}
}

// becomeReady stores the snapshot and, for a freshly typed password that
// the gateway just accepted, caches the credential. A cache write failure
// is logged only; the session stays ready.
func (s *AccountSession) becomeReady(snapshot *models.BalanceSnapshot, account *models.BrokerageAccount, institutionCode, password string, fresh bool) {
	s.state = StateReady
	s.snapshot = snapshot
	s.prompt = ""

	if fresh {
		cred := &models.Credential{
			AccountNumber:   account.AccountNumber,
			InstitutionCode: institutionCode,
			Password:        password,
			LinkHandle:      s.handle.ConnectedID,
		}
		if err := s.creds.Put(context.Background(), cred); err != nil {
			s.logger.Warn("failed to cache verified credential",
				zap.String("account", account.MaskedNumber()),
				zap.Error(err))
		}
	}
}

// reset clears all per-account state and bumps the generation so that any
// in-flight fetch result is discarded on arrival.
func (s *AccountSession) reset() {
	s.state = StateIdle
	s.account = nil
	s.institutionCode = ""
	s.handle = models.LinkHandle{}
	s.strategy = MatchNone
	s.generation = uuid.New().String()
	s.snapshot = nil
	s.failure = ""
	s.prompt = ""
}

func (s *AccountSession) failLocked(generation, message string) {
	if s.generation != generation {
		return
	}
	s.state = StateFailed
	s.failure = message
}

func (s *AccountSession) statusLocked() SessionStatus {
	status := SessionStatus{
		State:   s.state,
		Prompt:  s.prompt,
		Failure: s.failure,
	}
	if s.account != nil {
		status.AccountNumber = s.account.MaskedNumber()
	}
	if s.strategy != MatchNone {
		status.MatchStrategy = s.strategy.String()
	}
	return status
}
