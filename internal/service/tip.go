package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tahmid/trackroom/internal/apperror"
	"github.com/tahmid/trackroom/internal/metrics"
	"github.com/tahmid/trackroom/internal/model"
	"github.com/tahmid/trackroom/internal/payment"
	"github.com/tahmid/trackroom/internal/repository"
)

const (
	MaxTipMessageLength  = 500
	MaxTipUsernameLength = 60
)

// supportedCurrencies is the closed set of tip currencies. Amounts are
// minor units (cents) for fiat and satoshi-like base units otherwise.
var supportedCurrencies = map[string]bool{
	"usd": true,
	"eur": true,
	"btc": true,
}

// TipService records tips sent to creators. The unique payment reference is
// the replay guard: a provider callback delivered twice records one tip.
type TipService struct {
	tips     repository.TipRepository
	users    repository.UserRepository
	sessions payment.SessionProvider
	logger   *slog.Logger
}

func NewTipService(
	tips repository.TipRepository,
	users repository.UserRepository,
	sessions payment.SessionProvider,
	logger *slog.Logger,
) *TipService {
	return &TipService{
		tips:     tips,
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

func validateTipAmount(amount int64, currency string) (string, error) {
	if amount <= 0 {
		return "", apperror.ValidationFailed("amount", "tip amount must be positive")
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if !supportedCurrencies[currency] {
		return "", apperror.ValidationFailed("currency",
			fmt.Sprintf("unsupported currency %q", currency))
	}
	return currency, nil
}

// CreateCheckout opens a payment session for tipping a creator. Tippers may
// be anonymous; only the creator must exist.
func (s *TipService) CreateCheckout(ctx context.Context, creatorID string, amount int64, currency string) (*payment.Session, error) {
	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return nil, apperror.ValidationFailed("creator_id", "creator ID is required")
	}
	currency, err := validateTipAmount(amount, currency)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByID(ctx, creatorID); err != nil {
		return nil, err
	}

	session, err := s.sessions.CreateSession(ctx, creatorID, amount, currency)
	if err != nil {
		s.logger.Error("failed to create payment session",
			slog.String("creatorID", creatorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating payment session: %w", err)
	}

	s.logger.Info("checkout session created",
		slog.String("creatorID", creatorID),
		slog.String("reference", session.Reference),
	)

	return session, nil
}

// RecordTipInput is a completed payment reported back by the provider.
type RecordTipInput struct {
	CreatorID        string
	Amount           int64
	Currency         string
	Message          string
	TipperUsername   string
	PaymentReference string
}

// Record persists a completed tip. A reused payment reference returns
// Conflict and leaves exactly one stored tip, so replayed callbacks are
// harmless.
func (s *TipService) Record(ctx context.Context, in RecordTipInput) (*model.Tip, error) {
	in.CreatorID = strings.TrimSpace(in.CreatorID)
	if in.CreatorID == "" {
		return nil, apperror.ValidationFailed("creator_id", "creator ID is required")
	}
	currency, err := validateTipAmount(in.Amount, in.Currency)
	if err != nil {
		return nil, err
	}
	reference := strings.TrimSpace(in.PaymentReference)
	if reference == "" {
		return nil, apperror.ValidationFailed("payment_reference", "payment reference is required")
	}
	message := strings.TrimSpace(in.Message)
	if len(message) > MaxTipMessageLength {
		return nil, apperror.ValidationFailed("message",
			fmt.Sprintf("message must be %d characters or less", MaxTipMessageLength))
	}
	tipper := strings.TrimSpace(in.TipperUsername)
	if len(tipper) > MaxTipUsernameLength {
		return nil, apperror.ValidationFailed("tipper_username",
			fmt.Sprintf("username must be %d characters or less", MaxTipUsernameLength))
	}

	if _, err := s.users.GetUserByID(ctx, in.CreatorID); err != nil {
		return nil, err
	}

	tip := &model.Tip{
		CreatorID:        in.CreatorID,
		Amount:           in.Amount,
		Currency:         currency,
		Message:          message,
		TipperUsername:   tipper,
		PaymentReference: reference,
	}

	if err := s.tips.CreateTip(ctx, tip); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			metrics.TipReplaysRejected.Inc()
			s.logger.Warn("tip replay rejected",
				slog.String("reference", reference),
			)
			return nil, err
		}
		s.logger.Error("failed to record tip",
			slog.String("creatorID", in.CreatorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("recording tip: %w", err)
	}

	metrics.TipsRecorded.WithLabelValues(currency).Inc()
	s.logger.Info("tip recorded",
		slog.String("id", tip.ID),
		slog.String("creatorID", in.CreatorID),
		slog.Int64("amount", in.Amount),
		slog.String("currency", currency),
	)

	return tip, nil
}

// ListForCreator returns tips received by the caller. Tips are private to
// their recipient.
func (s *TipService) ListForCreator(ctx context.Context, callerID string, limit, offset int) ([]model.Tip, error) {
	if callerID == "" {
		return nil, apperror.Unauthenticated("authentication required to view tips")
	}

	tips, err := s.tips.ListTipsForCreator(ctx, callerID, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list tips", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing tips: %w", err)
	}

	return tips, nil
}
