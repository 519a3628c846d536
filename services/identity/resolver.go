package identity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fitbuds/models"
	"fitbuds/services/remote"
)

// Resolver decides whether to log in, register, or reuse an existing remote
// identity, and hands the resulting credential to the bridge.
type Resolver struct {
	Remote remote.Client
	Bridge Bridge
	Logger *zap.Logger
}

func NewResolver(remoteClient remote.Client, bridge Bridge, logger *zap.Logger) *Resolver {
	return &Resolver{Remote: remoteClient, Bridge: bridge, Logger: logger}
}

// Resolve authenticates the session against the remote API and sets
// RemoteUserID/RemoteToken on success.
//
// Login is attempted first when a remote identity is already bound. A failed
// login falls back to an existence check and, if needed, registration; the
// login after that chain must succeed or the flow is dead.
func (r *Resolver) Resolve(ctx context.Context, sess *models.WizardSession) error {
	if sess.User.FullName == "" {
		return &ValidationError{Field: "full_name", Message: "please provide mobile number and full name"}
	}
	if sess.User.Mobile == "" {
		return &ValidationError{Field: "mobile", Message: "please provide mobile number and full name"}
	}

	username := sess.User.Username()

	var auth *models.AuthData
	if sess.RemoteUserID != 0 {
		var err error
		auth, err = r.Remote.LoginUser(ctx, username, sess.User.Password)
		if err != nil {
			// Transport trouble is treated like a rejected login: the
			// fallback chain below gets its own attempt.
			r.Logger.Warn("login attempt failed, trying fallback chain", zap.Error(err))
			auth = nil
		}
	}

	if auth == nil {
		exists, err := r.Remote.CheckUserExists(ctx, sess.User.CountryCode, sess.User.Mobile, sess.User.Password)
		if err != nil {
			return err
		}
		if !exists {
			if err := r.Remote.RegisterUser(ctx, sess.User); err != nil {
				return err
			}
		}
		auth, err = r.Remote.LoginUser(ctx, username, sess.User.Password)
		if err != nil {
			return err
		}
		if auth == nil {
			return &AuthenticationError{Message: "failed to authenticate, please try again"}
		}
	}

	sess.RemoteUserID = auth.UserID
	sess.RemoteToken = auth.Token

	r.persist(sess, auth)
	return nil
}

// persist hands the credential to the bridge without blocking the wizard.
// Bridge failures are logged and deliberately never surfaced.
func (r *Resolver) persist(sess *models.WizardSession, auth *models.AuthData) {
	req := StoreRequest{
		UserID:   auth.UserID,
		Token:    auth.Token,
		FullName: sess.User.FullName,
		Mobile:   sess.User.Mobile,
		Email:    sess.User.Email,
		Password: sess.User.Password,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := r.Bridge.StoreRemoteIdentity(ctx, req); err != nil {
			r.Logger.Warn("failed to store remote identity on host platform",
				zap.Int("userId", req.UserID), zap.Error(err))
		}
	}()
}
