// Package simulator drives one USSD request/response cycle per user action:
// it decides whether to continue the current session or dial a new one,
// invokes the transport client, and records the turn and the audit log row.
package simulator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/peswahq/ussd-simulator/internal/profile"
	"github.com/peswahq/ussd-simulator/plugin/ussd"
	simerr "github.com/peswahq/ussd-simulator/server/internal/errors"
	"github.com/peswahq/ussd-simulator/server/internal/observability"
	"github.com/peswahq/ussd-simulator/store"
)

// Caller is the transport boundary the controller drives. One call per user
// action, no retries.
type Caller interface {
	Send(ctx context.Context, endpointURL string, request *ussd.RootRequest) *ussd.CallResult
}

// Config is the runtime-editable target configuration. It seeds every new
// session; existing sessions keep the values they were created with.
type Config struct {
	EndpointURL string `json:"endpointUrl"`
	Network     string `json:"network"`
	PhoneNumber string `json:"phoneNumber"`
}

// UpdateConfig is the partial-update request for the runtime configuration.
type UpdateConfig struct {
	EndpointURL *string `json:"endpointUrl"`
	Network     *string `json:"network"`
	PhoneNumber *string `json:"phoneNumber"`
}

// Service is the session controller.
type Service struct {
	store  *store.Store
	caller Caller
	logger *slog.Logger

	configMu sync.RWMutex
	config   Config

	// inflight holds one single-slot semaphore per session. A held slot is
	// the "busy" state: a second send or reset for the same session is
	// rejected instead of overlapping the in-flight call.
	inflightMu sync.Mutex
	inflight   map[string]*semaphore.Weighted
}

// NewService creates a session controller seeded from the profile defaults.
func NewService(p *profile.Profile, st *store.Store, caller Caller, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		caller: caller,
		logger: logger,
		config: Config{
			EndpointURL: p.EndpointURL,
			Network:     p.Network,
			PhoneNumber: p.PhoneNumber,
		},
		inflight: make(map[string]*semaphore.Weighted),
	}
}

// Config returns the current runtime configuration.
func (s *Service) Config() Config {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.config
}

// UpdateConfig merges the given fields into the runtime configuration.
func (s *Service) UpdateConfig(update *UpdateConfig) (Config, error) {
	s.configMu.Lock()
	defer s.configMu.Unlock()

	if update.Network != nil {
		if !ussd.IsValidNetwork(*update.Network) {
			return s.config, simerr.InvalidArgument("unknown network operator: " + *update.Network)
		}
		s.config.Network = *update.Network
	}
	if update.EndpointURL != nil {
		if *update.EndpointURL == "" {
			return s.config, simerr.InvalidArgument("endpoint URL cannot be empty")
		}
		s.config.EndpointURL = *update.EndpointURL
	}
	if update.PhoneNumber != nil {
		s.config.PhoneNumber = *update.PhoneNumber
	}
	return s.config, nil
}

// NewSession explicitly starts a fresh session from the current configuration.
func (s *Service) NewSession() (*store.Session, error) {
	config := s.Config()
	if err := validateSubscriber(config); err != nil {
		return nil, err
	}
	return s.store.CreateSession(config.PhoneNumber, config.Network), nil
}

// Send runs one request/response cycle for the given user input.
//
// When sessionID names no live session, or input dials a short-code
// (leading *), a brand-new session is created from the current configuration
// even if one was already active. Otherwise the input continues the session.
func (s *Service) Send(ctx context.Context, sessionID, input string) (*Result, error) {
	session := s.resolveSession(sessionID)

	if session == nil || ussd.IsDial(input) {
		config := s.Config()
		if err := validateSubscriber(config); err != nil {
			// Validation failures abort before any network call: no turn,
			// no log row.
			return nil, err
		}
		session = s.store.CreateSession(config.PhoneNumber, config.Network)
	}

	sem := s.sessionSemaphore(session.ID)
	if !sem.TryAcquire(1) {
		return nil, simerr.SessionBusy(session.ID)
	}
	defer sem.Release(1)

	callCtx := observability.NewCallContext(s.logger, session.ID, session.Network)
	request := &ussd.RootRequest{
		USSDReq: ussd.Request{
			Msisdn:        session.PhoneNumber,
			Msg:           input,
			Network:       session.Network,
			UserSessionID: session.SessionID,
		},
	}

	callResult := s.caller.Send(ctx, s.Config().EndpointURL, request)

	entry := &store.ConversationEntry{
		Timestamp: callCtx.StartTime,
		Request:   request,
		Response:  callResult.Response,
		UserInput: input,
		Error:     callResult.Err,
	}
	s.store.AppendTurn(session.ID, entry)

	result := &Result{
		Entry:    entry,
		Success:  callResult.OK(),
		Error:    callResult.Err,
		Duration: callResult.Duration.Milliseconds(),
	}

	if callResult.OK() {
		if title := callResult.Response.USSDResp.Title; title != "" {
			s.store.UpdateSession(session.ID, &store.UpdateSession{CurrentScreen: &title})
		}
		display := ussd.Render(&callResult.Response.USSDResp)
		result.Display = &display
		callCtx.Info("ussd call completed",
			slog.String(observability.LogFieldDuration, callResult.Duration.String()),
			slog.String("action", callResult.Response.USSDResp.Action))
	} else {
		callCtx.Error("ussd call failed", callResult.Err,
			slog.String(observability.LogFieldErrorCode, string(callResult.ErrKind)))
	}

	s.recordAttempt(ctx, session.ID, request, callResult)

	result.Session = s.store.GetSession(session.ID)
	return result, nil
}

// Result is the outcome of one user action.
type Result struct {
	Session *store.Session           `json:"session"`
	Entry   *store.ConversationEntry `json:"entry"`
	Display *ussd.Display            `json:"display,omitempty"`
	Success bool                     `json:"success"`
	Error   string                   `json:"error,omitempty"`
	// Duration is the measured call time in milliseconds.
	Duration int64 `json:"durationMs"`
}

// Reset clears the session's conversation history. Resetting a session that
// is mid-call is rejected as busy; resetting a missing session is a no-op.
func (s *Service) Reset(sessionID string) (*store.Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	session := s.store.GetSession(sessionID)
	if session == nil {
		return nil, nil
	}

	sem := s.sessionSemaphore(sessionID)
	if !sem.TryAcquire(1) {
		return nil, simerr.SessionBusy(sessionID)
	}
	defer sem.Release(1)

	s.store.ResetSession(sessionID)
	return s.store.GetSession(sessionID), nil
}

// DeleteSession removes the session and its in-flight guard.
func (s *Service) DeleteSession(sessionID string) {
	s.store.DeleteSession(sessionID)

	s.inflightMu.Lock()
	delete(s.inflight, sessionID)
	s.inflightMu.Unlock()
}

// recordAttempt writes the audit log row for one attempt. A failed insert is
// logged but does not fail the user action: the conversation turn is already
// recorded and the tool stays usable.
func (s *Service) recordAttempt(ctx context.Context, sessionID string, request *ussd.RootRequest, callResult *ussd.CallResult) {
	_, err := s.store.CreateRequestLog(ctx, &store.RequestLog{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Request:   request,
		Response:  callResult.Response,
		Success:   callResult.OK(),
		Error:     callResult.Err,
		Duration:  callResult.Duration.Milliseconds(),
	})
	if err != nil {
		s.logger.Error("failed to record request log",
			slog.String(observability.LogFieldSessionID, sessionID),
			slog.String("error", err.Error()))
	}
}

func (s *Service) resolveSession(sessionID string) *store.Session {
	if sessionID == "" {
		return nil
	}
	return s.store.GetSession(sessionID)
}

func (s *Service) sessionSemaphore(sessionID string) *semaphore.Weighted {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()

	sem, ok := s.inflight[sessionID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		s.inflight[sessionID] = sem
	}
	return sem
}

func validateSubscriber(config Config) error {
	if config.PhoneNumber == "" {
		return simerr.ValidationFailed("phone number is required to start a session")
	}
	if config.Network == "" {
		return simerr.ValidationFailed("network is required to start a session")
	}
	if !ussd.IsValidNetwork(config.Network) {
		return simerr.ValidationFailed("unknown network operator: " + config.Network)
	}
	return nil
}
