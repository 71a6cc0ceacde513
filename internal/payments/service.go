package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sunkaracharan/roifinal/internal/usage"
	"github.com/sunkaracharan/roifinal/pkg/config"
	"github.com/sunkaracharan/roifinal/pkg/db/models"
	"github.com/sunkaracharan/roifinal/pkg/enums"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/logger"
	"github.com/sunkaracharan/roifinal/pkg/metrics"
)

const (
	successPath = "/api/v1/payments/success"

	msgUnlocked   = "Payment verified. Unlimited access to the full calculator is active."
	msgProcessing = "Payment is being processed. Please wait a moment."
	msgNotGranted = "Payment completed but unlimited access is not active yet. Please try again."
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type usageService interface {
	Status(ctx context.Context, userID uuid.UUID) (*usage.Status, error)
	CanCalculate(ctx context.Context, userID uuid.UUID) (bool, error)
	GrantUnlimited(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ServiceParams bundles the payment service dependencies.
type ServiceParams struct {
	DB       txRunner
	Repo     *Repository
	Usage    usageService
	Users    userLookup
	Verifier SignatureVerifier
	Config   config.PaymentConfig
	BaseURL  string
	Logger   *logger.Logger
	Metrics  *metrics.DomainMetrics
	Now      func() time.Time
}

// Service runs the unlimited-access purchase flow.
type Service struct {
	db       txRunner
	repo     *Repository
	usage    usageService
	users    userLookup
	verifier SignatureVerifier
	cfg      config.PaymentConfig
	amount   decimal.Decimal
	baseURL  string
	logg     *logger.Logger
	metrics  *metrics.DomainMetrics
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if params.Usage == nil {
		return nil, fmt.Errorf("usage service required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user lookup required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(params.Config.Amount))
	if err != nil || !amount.IsPositive() {
		return nil, fmt.Errorf("invalid payment amount %q", params.Config.Amount)
	}
	verifier := params.Verifier
	if verifier == nil {
		verifier = NewSignatureVerifier(params.Config.GatewaySecret)
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		db:       params.DB,
		repo:     params.Repo,
		usage:    params.Usage,
		users:    params.Users,
		verifier: verifier,
		cfg:      params.Config,
		amount:   amount,
		baseURL:  strings.TrimRight(params.BaseURL, "/"),
		logg:     params.Logger,
		metrics:  params.Metrics,
		now:      now,
	}, nil
}

// Required reports the caller's free-tier position for the payment prompt.
func (s *Service) Required(ctx context.Context, userID uuid.UUID) (*Requirement, error) {
	status, err := s.usage.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Requirement{
		Remaining: status.Remaining,
		TotalUsed: status.Used,
		IsAdmin:   status.IsAdmin,
		Amount:    s.amount,
		Currency:  s.cfg.Currency,
	}, nil
}

// Create opens a pending payment for a user whose free calculations are
// exhausted.
func (s *Service) Create(ctx context.Context, userID uuid.UUID) (*Checkout, error) {
	allowed, err := s.usage.CanCalculate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if allowed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "you still have free calculations remaining")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	now := s.now()
	payment := &models.Payment{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    s.amount,
		Currency:  s.cfg.Currency,
		PaymentID: uuid.NewString(),
		Method:    enums.PaymentMethodRazorpay,
		Status:    enums.PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment")
	}
	s.metrics.IncPayment(enums.PaymentStatusPending.String(), "checkout")
	s.logg.Info(s.logg.WithPaymentID(s.logg.WithUserID(ctx, userID.String()), payment.PaymentID), "payment created")

	return &Checkout{
		PaymentID:       payment.PaymentID,
		Amount:          payment.Amount,
		Currency:        payment.Currency,
		Key:             s.cfg.GatewayKeyID,
		PaymentButtonID: s.cfg.PaymentButtonID,
		SuccessURL:      s.successURL(payment.PaymentID),
		UserName:        user.DisplayName(),
		UserEmail:       user.Email,
	}, nil
}

// Verify completes the caller's pending payment with the gateway data and
// grants unlimited access in the same transaction.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, in Confirmation) (*Outcome, error) {
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	in.GatewayPaymentID = strings.TrimSpace(in.GatewayPaymentID)
	in.Signature = strings.TrimSpace(in.Signature)
	if in.PaymentID == "" || in.GatewayPaymentID == "" || in.Signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing payment data")
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment, err := repo.FindForUser(ctx, userID, in.PaymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment")
		}
		if payment.Status != enums.PaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return s.complete(ctx, tx, payment, in)
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{
		PaymentID:       in.PaymentID,
		Status:          enums.PaymentStatusCompleted.String(),
		UnlimitedAccess: true,
		Message:         msgUnlocked,
	}, nil
}

// Success resolves the landing request the gateway redirects to after
// checkout.
func (s *Service) Success(ctx context.Context, userID uuid.UUID, in Confirmation) (*Outcome, error) {
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	if in.PaymentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no payment id provided")
	}
	payment, err := s.repo.FindForUser(ctx, userID, in.PaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment")
	}

	switch {
	case payment.Status == enums.PaymentStatusPending && strings.TrimSpace(in.GatewayPaymentID) != "" && strings.TrimSpace(in.Signature) != "":
		return s.Verify(ctx, userID, in)
	case payment.Status == enums.PaymentStatusCompleted:
		status, err := s.usage.Status(ctx, userID)
		if err != nil {
			return nil, err
		}
		out := &Outcome{
			PaymentID:       payment.PaymentID,
			Status:          payment.Status.String(),
			UnlimitedAccess: status.UnlimitedAccess,
			Message:         msgUnlocked,
		}
		if !status.UnlimitedAccess {
			out.Message = msgNotGranted
		}
		return out, nil
	default:
		return &Outcome{
			PaymentID: payment.PaymentID,
			Status:    "processing",
			Message:   msgProcessing,
		}, nil
	}
}

// History lists the caller's payments newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) (*History, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	status, err := s.usage.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &History{Payments: make([]PaymentDTO, 0, len(rows)), Usage: status}
	for i := range rows {
		out.Payments = append(out.Payments, FromModel(&rows[i]))
	}
	return out, nil
}

// SetStatus lets staff settle a payment by hand. Completing a payment also
// grants its owner unlimited access.
func (s *Service) SetStatus(ctx context.Context, paymentID string, status enums.PaymentStatus) (*PaymentDTO, error) {
	if !status.IsValid() || !status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be completed, failed or refunded").
			WithDetails(map[string]string{"status": status.String()})
	}
	var out PaymentDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment, err := repo.FindByPaymentID(ctx, paymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment")
		}
		now := s.now()
		var paidAt *time.Time
		if status == enums.PaymentStatusCompleted && payment.PaidAt == nil {
			paidAt = &now
		}
		if err := repo.SetStatus(ctx, payment.ID, status, paidAt, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update payment status")
		}
		if status == enums.PaymentStatusCompleted {
			if err := s.usage.GrantUnlimited(ctx, tx, payment.UserID); err != nil {
				return err
			}
		}
		payment.Status = status
		if paidAt != nil {
			payment.PaidAt = paidAt
		}
		out = FromModel(payment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncPayment(status.String(), "admin")
	s.logg.Info(s.logg.WithPaymentID(ctx, paymentID), fmt.Sprintf("payment marked %s by staff", status))
	return &out, nil
}

// ExpireStale fails pending payments older than the configured TTL.
func (s *Service) ExpireStale(ctx context.Context) (int64, error) {
	if s.cfg.PendingTTL <= 0 {
		return 0, nil
	}
	now := s.now()
	n, err := s.repo.ExpirePending(ctx, now.Add(-s.cfg.PendingTTL), now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "expire pending payments")
	}
	return n, nil
}

// Totals summarizes completed payments for the admin dashboard.
func (s *Service) Totals(ctx context.Context) (Totals, error) {
	totals, err := s.repo.CompletedTotals(ctx)
	if err != nil {
		return Totals{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum payments")
	}
	return totals, nil
}

func (s *Service) complete(ctx context.Context, tx *gorm.DB, payment *models.Payment, in Confirmation) error {
	if !s.verifier.Verify(payment.PaymentID, in.GatewayPaymentID, in.Signature) {
		s.metrics.IncPayment(enums.PaymentStatusFailed.String(), "verify")
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment signature")
	}
	gatewayID := in.GatewayPaymentID
	signature := in.Signature
	ok, err := s.repo.WithTx(tx).Complete(ctx, payment.ID, Completion{
		GatewayPaymentID: &gatewayID,
		GatewaySignature: &signature,
		PaidAt:           s.now(),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete payment")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payment is no longer pending")
	}
	if err := s.usage.GrantUnlimited(ctx, tx, payment.UserID); err != nil {
		return err
	}
	s.metrics.IncPayment(enums.PaymentStatusCompleted.String(), "verify")
	s.logg.Info(s.logg.WithPaymentID(ctx, payment.PaymentID), "payment verified; unlimited access granted")
	return nil
}

func (s *Service) successURL(paymentID string) string {
	q := url.Values{}
	q.Set("payment_id", paymentID)
	return s.baseURL + successPath + "?" + q.Encode()
}
