package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/tradesbychat/internal/domain"
	apperrors "github.com/pscheid92/tradesbychat/internal/platform/errors"
	"github.com/pscheid92/tradesbychat/internal/vote"
)

const (
	defaultRoundsLimit = 20
	maxRoundsLimit     = 500
)

type statusResponse struct {
	FeedID  string `json:"feed_id"`
	Symbol  string `json:"symbol"`
	Account string `json:"account"`
	vote.Status
}

type roundsResponse struct {
	Rounds []domain.Decision `json:"rounds"`
}

func (s *Server) handleStatus(c echo.Context) error {
	resp := statusResponse{
		FeedID:  s.config.FeedID,
		Symbol:  s.config.TradingSymbol,
		Account: s.config.TradingAccount,
		Status:  s.status.Status(),
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListRounds(c echo.Context) error {
	if s.history == nil {
		return apperrors.UnavailableError("round history is disabled", nil)
	}

	limit := defaultRoundsLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRoundsLimit {
			return apperrors.ValidationError(fmt.Sprintf("limit must be between 1 and %d", maxRoundsLimit)).WithField("limit", raw)
		}
		limit = n
	}

	rounds, err := s.history.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return apperrors.InternalError("failed to list rounds", err)
	}
	if rounds == nil {
		rounds = []domain.Decision{}
	}

	if err := c.JSON(http.StatusOK, roundsResponse{Rounds: rounds}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetRound(c echo.Context) error {
	if s.history == nil {
		return apperrors.UnavailableError("round history is disabled", nil)
	}

	raw := c.Param("id")
	roundID, err := uuid.Parse(raw)
	if err != nil {
		return apperrors.ValidationError("invalid round id").WithField("id", raw)
	}

	round, err := s.history.GetByID(c.Request().Context(), roundID)
	if errors.Is(err, domain.ErrRoundNotFound) {
		return apperrors.NotFoundError("round not found").WithField("id", raw)
	}
	if err != nil {
		return apperrors.InternalError("failed to load round", err).WithField("id", raw)
	}

	if err := c.JSON(http.StatusOK, round); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
