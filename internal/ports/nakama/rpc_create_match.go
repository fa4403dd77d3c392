package nakama

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/goccy/go-json"
	"github.com/heroiclabs/nakama-common/runtime"

	"roevhul/internal/app"
)

// gRPC status codes used by runtime.NewError.
const (
	codeInvalidArgument    = 3
	codeFailedPrecondition = 9
	codeInternal           = 13
)

// CreateMatchRequest is the optional payload of the create_match RPC.
type CreateMatchRequest struct {
	Private bool `json:"private"`
}

// CreateMatchResponse is the payload returned to clients after a table was opened.
type CreateMatchResponse struct {
	MatchID string `json:"match_id"`
	Ticket  string `json:"ticket,omitempty"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcCreateMatch, rpcCreateMatch)
}

func rpcCreateMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req CreateMatchRequest
	if strings.TrimSpace(payload) != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid create_match payload", codeInvalidArgument)
		}
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		logger.Error("rpcCreateMatch [User:%s]: Invalid game config: %v", userID, err)
		return "", runtime.NewError("invalid game config", codeFailedPrecondition)
	}
	tickets := app.NewTicketService(cfg.TicketSecret, 0)
	if req.Private && !tickets.Enabled() {
		return "", runtime.NewError("private matches are not configured", codeFailedPrecondition)
	}

	// Seat/owner assignment happens in MatchJoin (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, MatchNameRoevhul, map[string]interface{}{"private": req.Private})
	if err != nil {
		logger.Error("rpcCreateMatch [User:%s]: MatchCreate error: %v", userID, err)
		return "", err
	}

	resp := CreateMatchResponse{MatchID: matchID}
	if req.Private {
		resp.Ticket, err = tickets.Issue(matchID, userID)
		if err != nil {
			logger.Error("rpcCreateMatch [User:%s]: Failed to issue ticket: %v", userID, err)
			if errors.Is(err, app.ErrTicketsDisabled) {
				return "", runtime.NewError(err.Error(), codeFailedPrecondition)
			}
			return "", runtime.NewError("failed to issue ticket", codeInternal)
		}
	}

	logger.Info("rpcCreateMatch [User:%s]: Created match %s (private=%t)", userID, matchID, req.Private)
	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
