package wizard

import (
	"context"

	"go.uber.org/zap"

	"fitbuds/config"
	"fitbuds/models"
	"fitbuds/services/identity"
	"fitbuds/services/payment"
	"fitbuds/services/remote"
)

// SessionSeed is what the host platform knows about the visitor when the
// widget starts: its own session flag, any previously bridged remote
// identity, and profile fields to pre-fill registration with.
type SessionSeed struct {
	IsLoggedIn   bool   `json:"isLoggedIn"`
	RemoteUserID int    `json:"remoteUserId"`
	RemoteToken  string `json:"remoteToken"`
	FullName     string `json:"fullName"`
	CountryCode  string `json:"countryCode"`
	Mobile       string `json:"mobile"`
	Email        string `json:"email"`
}

// RegistrationForm is the step-4.5 form payload.
type RegistrationForm struct {
	FullName     string `json:"full_name"`
	CountryCode  string `json:"country_code"`
	Mobile       string `json:"mobile"`
	Email        string `json:"email"`
	ReferralCode string `json:"referral_code"`
}

// Service drives the booking wizard: it owns the session state, the legal
// transitions, and the calls into the remote API, identity resolution and
// payment adapters at the right transitions.
//
// Every action returns the updated session. Expected failures (remote
// rejections, invalid input, gateway trouble) are also written into the
// session's LastError so the caller can render the banner; the typed error
// is returned alongside for callers that branch on it.
type Service interface {
	Start(ctx context.Context, seed SessionSeed) (*models.WizardSession, error)
	Get(ctx context.Context, sessionID string) (*models.WizardSession, error)
	Cancel(ctx context.Context, sessionID string) error

	SelectCategory(ctx context.Context, sessionID, categoryName string) (*models.WizardSession, error)
	SelectProvider(ctx context.Context, sessionID string, providerID int) (*models.WizardSession, error)
	SelectDate(ctx context.Context, sessionID, date string) (*models.WizardSession, error)
	SelectSlot(ctx context.Context, sessionID string, slotID int) (*models.WizardSession, error)
	SubmitRegistration(ctx context.Context, sessionID string, form RegistrationForm) (*models.WizardSession, error)
	ConfirmReservation(ctx context.Context, sessionID string) (*models.WizardSession, error)
	SetCoupon(ctx context.Context, sessionID, code string) (*models.WizardSession, error)
	ValidateCoupon(ctx context.Context, sessionID string) (*models.WizardSession, error)
	RemoveCartItem(ctx context.Context, sessionID string, itemID int) (*models.WizardSession, error)
	Checkout(ctx context.Context, sessionID string) (*models.WizardSession, error)
	Pay(ctx context.Context, sessionID string, channelID int) (*models.WizardSession, error)
	Back(ctx context.Context, sessionID string) (*models.WizardSession, error)
	DismissError(ctx context.Context, sessionID string) (*models.WizardSession, error)
}

// DefaultWizardService implements Service.
type DefaultWizardService struct {
	Store    SessionStore
	Remote   remote.Client
	Resolver *identity.Resolver
	Gateways *payment.Registry
	Cfg      config.Config
	Logger   *zap.Logger
}

func NewService(store SessionStore, remoteClient remote.Client, resolver *identity.Resolver,
	gateways *payment.Registry, cfg config.Config, logger *zap.Logger) *DefaultWizardService {
	return &DefaultWizardService{
		Store:    store,
		Remote:   remoteClient,
		Resolver: resolver,
		Gateways: gateways,
		Cfg:      cfg,
		Logger:   logger,
	}
}
