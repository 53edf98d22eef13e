package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"

	"zkhunt/internal/app"
	"zkhunt/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

type rpcFunc func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)

// actionFunc runs one session action for an authenticated caller.
type actionFunc func(ctx context.Context, s *app.Service, caller string, req actionRequest) (app.Outcome, error)

// Handlers exposes the hunt service as Nakama RPCs and publishes results to the relay.
type Handlers struct {
	service *app.Service
	relay   *relayPublisher
}

func NewHandlers(service *app.Service, nk runtime.NakamaModule) *Handlers {
	return &Handlers{service: service, relay: newRelayPublisher(nk)}
}

// actions maps RPC ids to the service operation they run.
var actions = map[string]actionFunc{
	RpcJoinGame: func(ctx context.Context, s *app.Service, caller string, req actionRequest) (app.Outcome, error) {
		return s.JoinGame(ctx, caller, req.SessionID)
	},
	RpcHunterMove: func(ctx context.Context, s *app.Service, caller string, req actionRequest) (app.Outcome, error) {
		to, err := req.coord()
		if err != nil {
			return app.Outcome{}, err
		}
		return s.HunterMove(ctx, caller, req.SessionID, to)
	},
	RpcHunterSearch: func(ctx context.Context, s *app.Service, caller string, req actionRequest) (app.Outcome, error) {
		target, err := req.coord()
		if err != nil {
			return app.Outcome{}, err
		}
		return s.HunterSearch(ctx, caller, req.SessionID, target)
	},
	RpcHunterPowerSearch: func(ctx context.Context, s *app.Service, caller string, req actionRequest) (app.Outcome, error) {
		return s.HunterPowerSearch(ctx, caller, req.SessionID)
	},
	RpcHunterEMP: func(ctx context.Context, s *app.Service, caller string, req actionRequest) (app.Outcome, error) {
		return s.HunterEMP(ctx, caller, req.SessionID)
	},
	RpcPreyMovePublic: func(ctx context.Context, s *app.Service, caller string, req actionRequest) (app.Outcome, error) {
		to, err := req.coord()
		if err != nil {
			return app.Outcome{}, err
		}
		return s.PreyMovePublic(ctx, caller, req.SessionID, to)
	},
	RpcPreyDashPublic: func(ctx context.Context, s *app.Service, caller string, req actionRequest) (app.Outcome, error) {
		to, err := req.coord()
		if err != nil {
			return app.Outcome{}, err
		}
		return s.PreyDashPublic(ctx, caller, req.SessionID, to)
	},
	RpcPreyEnterJungle: func(ctx context.Context, s *app.Service, caller string, req actionRequest) (app.Outcome, error) {
		commitment, blob, err := commitmentAndProof(req)
		if err != nil {
			return app.Outcome{}, err
		}
		return s.PreyEnterJungle(ctx, caller, req.SessionID, commitment, blob)
	},
	RpcPreyMoveJungle: func(ctx context.Context, s *app.Service, caller string, req actionRequest) (app.Outcome, error) {
		commitment, blob, err := commitmentAndProof(req)
		if err != nil {
			return app.Outcome{}, err
		}
		return s.PreyMoveJungle(ctx, caller, req.SessionID, commitment, blob)
	},
	RpcPreyExitJungle: func(ctx context.Context, s *app.Service, caller string, req actionRequest) (app.Outcome, error) {
		to, err := req.coord()
		if err != nil {
			return app.Outcome{}, err
		}
		return s.PreyExitJungle(ctx, caller, req.SessionID, to)
	},
	RpcPreyPassFrozen: func(ctx context.Context, s *app.Service, caller string, req actionRequest) (app.Outcome, error) {
		return s.PreyPassFrozen(ctx, caller, req.SessionID)
	},
	RpcRespondSearch: func(ctx context.Context, s *app.Service, caller string, req actionRequest) (app.Outcome, error) {
		blob, err := req.proofBlob()
		if err != nil {
			return app.Outcome{}, err
		}
		return s.RespondSearch(ctx, caller, req.SessionID, blob)
	},
	RpcClaimCatch: func(ctx context.Context, s *app.Service, caller string, req actionRequest) (app.Outcome, error) {
		return s.ClaimCatch(ctx, caller, req.SessionID)
	},
}

func commitmentAndProof(req actionRequest) (domain.Commitment, []byte, error) {
	commitment, err := req.commitment()
	if err != nil {
		return commitment, nil, err
	}
	blob, err := req.proofBlob()
	return commitment, blob, err
}

// Register registers every session RPC.
func (h *Handlers) Register(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcCreateGame, h.RpcCreateGame); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcGetGame, h.RpcGetGame); err != nil {
		return err
	}
	for id, fn := range actions {
		if err := initializer.RegisterRpc(id, h.action(id, fn)); err != nil {
			return err
		}
	}
	return nil
}

// RpcCreateGame opens a session for the caller and its relay match.
//
// Payload: ignored.
// Returns: {"session": {...}, "match_id": "..."}.
func (h *Handlers) RpcCreateGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", errUnauthenticated
	}

	out, err := h.service.CreateGame(ctx, userID)
	if err != nil {
		logger.Error("RpcCreateGame [User:%s]: Failed to create session: %v", userID, err)
		return "", toRuntimeError(err)
	}

	matchID, err := h.relay.create(ctx, out.Session)
	if err != nil {
		logger.Warn("RpcCreateGame [User:%s]: Failed to create relay for session %d: %v", userID, out.Session.ID, err)
	}
	logger.Info("RpcCreateGame [User:%s]: Created session %d (map %d, relay %s)", userID, out.Session.ID, out.Session.MapIndex, matchID)

	return marshalResponse(logger, sessionResponse{Session: newSessionView(out.Session), MatchID: matchID})
}

// RpcGetGame returns the public session state.
//
// Payload: {"session_id": N}.
func (h *Handlers) RpcGetGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req actionRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", errInvalidPayload
	}
	session, err := h.service.GetGame(ctx, req.SessionID)
	if err != nil {
		if !isRejection(err) {
			logger.Error("RpcGetGame [User:%s]: Failed to load session %d: %v", userID, req.SessionID, err)
		}
		return "", toRuntimeError(err)
	}

	matchID, err := h.relay.resume(ctx, session)
	if err != nil {
		logger.Warn("RpcGetGame [User:%s]: Failed to resume relay for session %d: %v", userID, session.ID, err)
	}
	return marshalResponse(logger, sessionResponse{Session: newSessionView(session), MatchID: matchID})
}

func (h *Handlers) action(name string, fn actionFunc) rpcFunc {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if userID == "" {
			return "", errUnauthenticated
		}

		var req actionRequest
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", errInvalidPayload
		}

		out, err := fn(ctx, h.service, userID, req)
		if err != nil {
			switch {
			case errors.Is(err, errBadRequest):
				return "", requestError(err.Error())
			case isRejection(err):
				logger.Warn("%s [User:%s]: Rejected on session %d: %v", name, userID, req.SessionID, err)
			default:
				logger.Error("%s [User:%s]: Failed on session %d: %v", name, userID, req.SessionID, err)
			}
			return "", toRuntimeError(err)
		}

		if out.NotifyErr != nil {
			logger.Warn("%s [User:%s]: Match notification failed for session %d: %v", name, userID, req.SessionID, out.NotifyErr)
		}
		if out.Result.MatchEnded {
			logger.Info("%s [User:%s]: Session %d ended %d-%d, winner %q", name, userID, out.Session.ID, out.Session.Player1Score, out.Session.Player2Score, out.Session.Winner)
		}

		matchID, err := h.relay.publish(ctx, out)
		if err != nil {
			logger.Warn("%s [User:%s]: Failed to signal relay for session %d: %v", name, userID, req.SessionID, err)
		}
		return marshalResponse(logger, newActionResponse(out, matchID))
	}
}

func marshalResponse(logger runtime.Logger, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to marshal response: %v", err)
		return "", newRuntimeError(errorBody{Kind: kindInternal, Message: "internal error"}, codeInternal)
	}
	return string(b), nil
}

func sessionLabelKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}
