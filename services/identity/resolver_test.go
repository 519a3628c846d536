package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fitbuds/models"
	"fitbuds/services/remote"
)

// authRemote scripts just the identity calls; the rest of the client
// surface is never reached by the resolver.
type authRemote struct {
	remote.Client

	exists      bool
	existsErr   error
	existsCalls int

	registerErr  error
	registerWith models.UserData
	registerCall int

	loginResults []*models.AuthData
	loginErrs    []error
	loginCalls   int
}

func (f *authRemote) CheckUserExists(context.Context, string, string, string) (bool, error) {
	f.existsCalls++
	return f.exists, f.existsErr
}

func (f *authRemote) RegisterUser(_ context.Context, user models.UserData) error {
	f.registerCall++
	f.registerWith = user
	return f.registerErr
}

func (f *authRemote) LoginUser(context.Context, string, string) (*models.AuthData, error) {
	i := f.loginCalls
	f.loginCalls++
	var auth *models.AuthData
	if i < len(f.loginResults) {
		auth = f.loginResults[i]
	}
	var err error
	if i < len(f.loginErrs) {
		err = f.loginErrs[i]
	}
	return auth, err
}

type recordingBridge struct {
	stored chan StoreRequest
}

func newRecordingBridge() *recordingBridge {
	return &recordingBridge{stored: make(chan StoreRequest, 1)}
}

func (b *recordingBridge) StoreRemoteIdentity(_ context.Context, req StoreRequest) error {
	b.stored <- req
	return nil
}

func session() *models.WizardSession {
	return &models.WizardSession{
		User: models.UserData{
			CountryCode: "+91",
			Mobile:      "9000000000",
			FullName:    "Jane",
			Email:       "j@x.com",
			Password:    "xfit123",
		},
	}
}

func waitForStore(t *testing.T, bridge *recordingBridge) StoreRequest {
	t.Helper()
	select {
	case req := <-bridge.stored:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("bridge was never invoked")
		return StoreRequest{}
	}
}

func TestResolveRegistersNewUser(t *testing.T) {
	fake := &authRemote{
		exists:       false,
		loginResults: []*models.AuthData{{UserID: 42, Token: "tok"}},
	}
	bridge := newRecordingBridge()
	r := NewResolver(fake, bridge, zap.NewNop())

	sess := session()
	require.NoError(t, r.Resolve(context.Background(), sess))

	assert.Equal(t, 1, fake.existsCalls)
	assert.Equal(t, 1, fake.registerCall)
	assert.Equal(t, "9000000000", fake.registerWith.Mobile)
	assert.Equal(t, 42, sess.RemoteUserID)
	assert.Equal(t, "tok", sess.RemoteToken)

	stored := waitForStore(t, bridge)
	assert.Equal(t, 42, stored.UserID)
	assert.Equal(t, "tok", stored.Token)
	assert.Equal(t, "Jane", stored.FullName)
}

func TestResolveSkipsRegistrationForExistingUser(t *testing.T) {
	fake := &authRemote{
		exists:       true,
		loginResults: []*models.AuthData{{UserID: 42, Token: "tok"}},
	}
	r := NewResolver(fake, newRecordingBridge(), zap.NewNop())

	sess := session()
	require.NoError(t, r.Resolve(context.Background(), sess))
	assert.Equal(t, 0, fake.registerCall)
	assert.Equal(t, "tok", sess.RemoteToken)
}

func TestResolveLoginFirstWhenIdentityBound(t *testing.T) {
	fake := &authRemote{
		loginResults: []*models.AuthData{{UserID: 42, Token: "tok"}},
	}
	r := NewResolver(fake, newRecordingBridge(), zap.NewNop())

	sess := session()
	sess.RemoteUserID = 42
	require.NoError(t, r.Resolve(context.Background(), sess))

	assert.Equal(t, 1, fake.loginCalls)
	assert.Equal(t, 0, fake.existsCalls)
	assert.Equal(t, "tok", sess.RemoteToken)
}

func TestResolveFallsBackWhenBoundLoginRejected(t *testing.T) {
	fake := &authRemote{
		exists:       true,
		loginResults: []*models.AuthData{nil, {UserID: 43, Token: "tok2"}},
	}
	r := NewResolver(fake, newRecordingBridge(), zap.NewNop())

	sess := session()
	sess.RemoteUserID = 42
	require.NoError(t, r.Resolve(context.Background(), sess))

	assert.Equal(t, 2, fake.loginCalls)
	assert.Equal(t, 1, fake.existsCalls)
	assert.Equal(t, 43, sess.RemoteUserID)
	assert.Equal(t, "tok2", sess.RemoteToken)
}

func TestResolveFallsBackOnLoginTransportError(t *testing.T) {
	fake := &authRemote{
		exists:       true,
		loginResults: []*models.AuthData{nil, {UserID: 42, Token: "tok"}},
		loginErrs:    []error{&remote.APIError{Op: "loginUser", Message: "connection refused"}},
	}
	r := NewResolver(fake, newRecordingBridge(), zap.NewNop())

	sess := session()
	sess.RemoteUserID = 42
	require.NoError(t, r.Resolve(context.Background(), sess))
	assert.Equal(t, "tok", sess.RemoteToken)
}

func TestResolveFailsWhenFinalLoginRejected(t *testing.T) {
	fake := &authRemote{exists: true}
	r := NewResolver(fake, newRecordingBridge(), zap.NewNop())

	sess := session()
	err := r.Resolve(context.Background(), sess)
	require.Error(t, err)
	var authErr *AuthenticationError
	assert.True(t, errors.As(err, &authErr))
	assert.Empty(t, sess.RemoteToken)
}

func TestResolveValidatesProfileFirst(t *testing.T) {
	r := NewResolver(&authRemote{}, newRecordingBridge(), zap.NewNop())

	for _, mutate := range []func(*models.WizardSession){
		func(s *models.WizardSession) { s.User.FullName = "" },
		func(s *models.WizardSession) { s.User.Mobile = "" },
	} {
		sess := session()
		mutate(sess)
		err := r.Resolve(context.Background(), sess)
		require.Error(t, err)
		var vErr *ValidationError
		assert.True(t, errors.As(err, &vErr))
	}
}

func TestAjaxBridgePostsActionForm(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = map[string]string{
			"action":  r.PostForm.Get("action"),
			"user_id": r.PostForm.Get("user_id"),
			"token":   r.PostForm.Get("token"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	bridge := NewAjaxBridge(srv.URL)
	err := bridge.StoreRemoteIdentity(context.Background(), StoreRequest{UserID: 42, Token: "tok"})
	require.NoError(t, err)

	assert.Equal(t, "fitbuds_store_user_id", form["action"])
	assert.Equal(t, "42", form["user_id"])
	assert.Equal(t, "tok", form["token"])
}

func TestAjaxBridgeRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	bridge := NewAjaxBridge(srv.URL)
	err := bridge.StoreRemoteIdentity(context.Background(), StoreRequest{UserID: 42, Token: "tok"})
	require.Error(t, err)
}
