package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/pkg/mailer"
	"consultancy-cms/pkg/token"
	"consultancy-cms/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

const testAdmin = "admin@example.com"

type authFixture struct {
	codes    *memCodes
	sessions *memSessions
	clock    *clock
	auth     *authService
	session  *sessionService
	issued   []string
}

func newAuthFixture(t *testing.T, dispatcher mailer.Dispatcher, admins ...string) *authFixture {
	t.Helper()

	signer, err := token.NewSigner("test-secret-0123456789")
	require.NoError(t, err)

	f := &authFixture{
		codes:    newMemCodes(),
		sessions: newMemSessions(),
		clock:    newClock(),
	}

	f.session = NewSessionService(f.sessions, signer, 7*24*time.Hour, zap.NewNop()).(*sessionService)
	f.session.now = f.clock.Now

	f.auth = NewAuthService(f.codes, f.session, dispatcher,
		utils.OTPConfig{ExpiryMinutes: 10, Length: 6}, admins, zap.NewNop()).(*authService)
	f.auth.now = f.clock.Now
	f.auth.hashCost = bcrypt.MinCost
	f.auth.generate = func(n int) (string, error) {
		code, err := utils.GenerateOTP(n)
		f.issued = append(f.issued, code)
		return code, err
	}
	return f
}

func (f *authFixture) lastCode() string {
	return f.issued[len(f.issued)-1]
}

func acceptingMailer() *mockDispatcher {
	m := &mockDispatcher{}
	m.On("SendVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return m
}

func TestRequestCode_DeniedEmail_NoCodeNoMail(t *testing.T) {
	m := &mockDispatcher{}
	f := newAuthFixture(t, m, testAdmin)

	_, err := f.auth.RequestCode(context.Background(), "random@nowhere.com")
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
	assert.Equal(t, 0, f.codes.count())
	assert.Empty(t, f.issued)
	m.AssertNotCalled(t, "SendVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestCode_InvalidEmail(t *testing.T) {
	m := &mockDispatcher{}
	f := newAuthFixture(t, m, testAdmin)

	_, err := f.auth.RequestCode(context.Background(), "not an email")
	assert.ErrorIs(t, err, entity.ErrValidation)

	var verr *entity.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	m.AssertNotCalled(t, "SendVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestCode_AllowListIsCaseInsensitive(t *testing.T) {
	m := acceptingMailer()
	f := newAuthFixture(t, m, "Admin@Example.com")

	_, err := f.auth.RequestCode(context.Background(), "  ADMIN@example.COM ")
	require.NoError(t, err)

	stored, _ := f.codes.FindByEmail(context.Background(), testAdmin)
	require.NotNil(t, stored)
	m.AssertCalled(t, "SendVerificationCode", mock.Anything, testAdmin, f.lastCode(), stored.ExpiresAt)
}

func TestRequestCode_StoresHashedCodeAndMailsOnce(t *testing.T) {
	m := acceptingMailer()
	f := newAuthFixture(t, m, testAdmin)

	expiresAt, err := f.auth.RequestCode(context.Background(), testAdmin)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(10*time.Minute), expiresAt)

	code := f.lastCode()
	assert.Len(t, code, 6)
	assert.Regexp(t, `^[0-9]{6}$`, code)

	stored, _ := f.codes.FindByEmail(context.Background(), testAdmin)
	require.NotNil(t, stored)
	assert.NotEqual(t, code, stored.CodeHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.CodeHash), []byte(code)))

	m.AssertNumberOfCalls(t, "SendVerificationCode", 1)
}

func TestRequestCode_MailerErrorDoesNotFailFlow(t *testing.T) {
	m := &mockDispatcher{}
	m.On("SendVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	f := newAuthFixture(t, m, testAdmin)

	_, err := f.auth.RequestCode(context.Background(), testAdmin)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.codes.count())
}

func TestVerifyCode_SucceedsExactlyOnce(t *testing.T) {
	f := newAuthFixture(t, acceptingMailer(), testAdmin)
	ctx := context.Background()

	_, err := f.auth.RequestCode(ctx, testAdmin)
	require.NoError(t, err)
	code := f.lastCode()

	issued, err := f.auth.VerifyCode(ctx, testAdmin, code)
	require.NoError(t, err)
	require.NotNil(t, issued)
	assert.NotEmpty(t, issued.Token)
	assert.Equal(t, "email:"+testAdmin, issued.Session.Subject)
	assert.Equal(t, "admin", issued.Session.DisplayName)
	assert.Equal(t, f.clock.Now().Add(7*24*time.Hour), issued.Session.ExpiresAt)

	_, err = f.auth.VerifyCode(ctx, testAdmin, code)
	assert.ErrorIs(t, err, entity.ErrInvalidCode)
}

func TestVerifyCode_ExpiredCodeFails(t *testing.T) {
	f := newAuthFixture(t, acceptingMailer(), testAdmin)
	ctx := context.Background()

	_, err := f.auth.RequestCode(ctx, testAdmin)
	require.NoError(t, err)

	f.clock.Advance(10*time.Minute + time.Second)

	_, err = f.auth.VerifyCode(ctx, testAdmin, f.lastCode())
	assert.ErrorIs(t, err, entity.ErrInvalidCode)
	assert.Equal(t, 0, f.codes.count())
}

func TestVerifyCode_AtExpiryInstantStillValid(t *testing.T) {
	f := newAuthFixture(t, acceptingMailer(), testAdmin)
	ctx := context.Background()

	_, err := f.auth.RequestCode(ctx, testAdmin)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)

	_, err = f.auth.VerifyCode(ctx, testAdmin, f.lastCode())
	assert.NoError(t, err)
}

func TestVerifyCode_WrongCodeKeepsStoredCode(t *testing.T) {
	f := newAuthFixture(t, acceptingMailer(), testAdmin)
	ctx := context.Background()
	f.auth.generate = func(int) (string, error) { return "123456", nil }

	_, err := f.auth.RequestCode(ctx, testAdmin)
	require.NoError(t, err)

	_, err = f.auth.VerifyCode(ctx, testAdmin, "654321")
	assert.ErrorIs(t, err, entity.ErrInvalidCode)
	assert.Equal(t, 1, f.codes.count())

	_, err = f.auth.VerifyCode(ctx, testAdmin, "123456")
	assert.NoError(t, err)
}

func TestVerifyCode_NoStoredCode(t *testing.T) {
	f := newAuthFixture(t, acceptingMailer(), testAdmin)

	_, err := f.auth.VerifyCode(context.Background(), testAdmin, "123456")
	assert.ErrorIs(t, err, entity.ErrInvalidCode)
}

func TestVerifyCode_MissingFields(t *testing.T) {
	f := newAuthFixture(t, acceptingMailer(), testAdmin)

	_, err := f.auth.VerifyCode(context.Background(), "", "")
	var verr *entity.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "code")
}

func TestRequestCode_ReissueInvalidatesPreviousCode(t *testing.T) {
	f := newAuthFixture(t, acceptingMailer(), testAdmin)
	ctx := context.Background()

	codes := []string{"111111", "222222"}
	f.auth.generate = func(int) (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	_, err := f.auth.RequestCode(ctx, testAdmin)
	require.NoError(t, err)
	_, err = f.auth.RequestCode(ctx, testAdmin)
	require.NoError(t, err)

	_, err = f.auth.VerifyCode(ctx, testAdmin, "111111")
	assert.ErrorIs(t, err, entity.ErrInvalidCode)

	_, err = f.auth.VerifyCode(ctx, testAdmin, "222222")
	assert.NoError(t, err)
}

func TestLogFallback_LoginScenario(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := mailer.NewDispatcher(utils.EmailConfig{}, zap.New(core))
	f := newAuthFixture(t, dispatcher, "rhfiha@gmail.com")
	ctx := context.Background()

	_, err := f.auth.RequestCode(ctx, "rhfiha@gmail.com")
	require.NoError(t, err)

	entries := logs.FilterMessage("Verification code issued").All()
	require.Len(t, entries, 1)
	code, _ := entries[0].ContextMap()["code"].(string)
	assert.Regexp(t, `^[0-9]{6}$`, code)

	issued, err := f.auth.VerifyCode(ctx, "rhfiha@gmail.com", code)
	require.NoError(t, err)

	session, err := f.session.Validate(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "rhfiha@gmail.com", session.Email)
}

func TestLogout_DestroysSession(t *testing.T) {
	f := newAuthFixture(t, acceptingMailer(), testAdmin)
	ctx := context.Background()

	_, err := f.auth.RequestCode(ctx, testAdmin)
	require.NoError(t, err)
	issued, err := f.auth.VerifyCode(ctx, testAdmin, f.lastCode())
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, issued.Token))

	_, err = f.session.Validate(ctx, issued.Token)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestPurgeExpiredCodes(t *testing.T) {
	f := newAuthFixture(t, acceptingMailer(), testAdmin, "other@example.com")
	ctx := context.Background()

	_, err := f.auth.RequestCode(ctx, testAdmin)
	require.NoError(t, err)
	f.clock.Advance(11 * time.Minute)
	_, err = f.auth.RequestCode(ctx, "other@example.com")
	require.NoError(t, err)

	n, err := f.auth.PurgeExpiredCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, f.codes.count())
}
