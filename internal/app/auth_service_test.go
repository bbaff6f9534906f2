package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"assignment-helper/internal/model"
	"assignment-helper/internal/pkg/jwtutil"
	"assignment-helper/internal/repository"
	"assignment-helper/internal/testutil"
)

const testSecret = "test-secret"

func newAuthService(t *testing.T) *AuthService {
	db := testutil.DB(t)
	return NewAuthService(repository.NewStudentRepository(db), testSecret, 30*time.Minute, testutil.Logger(t))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	student, err := svc.Register(ctx, RegisterInput{
		Email:     "  Ada@Example.com ",
		Password:  "correct horse",
		FullName:  "Ada Lovelace",
		StudentID: "S-1",
	})
	require.NoError(t, err)
	assert.NotZero(t, student.ID)
	assert.Equal(t, "ada@example.com", student.Email)
	assert.NotEqual(t, "correct horse", student.PasswordHash)
	assert.False(t, student.CreatedAt.IsZero())

	result, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", result.TokenType)

	id, err := svc.VerifyToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, student.ID, id)

	me, err := svc.GetStudentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", me.FullName)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	input := RegisterInput{Email: "dup@example.com", Password: "pw", FullName: "A", StudentID: "1"}

	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	input.Email = "DUP@example.com"
	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterLosingConcurrentInsertReportsEmailExists(t *testing.T) {
	db := testutil.DB(t)
	svc := NewAuthService(repository.NewStudentRepository(db), testSecret, 30*time.Minute, testutil.Logger(t))

	// Another registration for the same email lands right after the lookup.
	inserted := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:concurrent_register", func(tx *gorm.DB) {
		if inserted {
			return
		}
		inserted = true
		rival := &model.Student{Email: "race@example.com", PasswordHash: "x", FullName: "Rival", StudentID: "R"}
		require.NoError(t, db.Session(&gorm.Session{NewDB: true}).Create(rival).Error)
	}))

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "race@example.com", Password: "pw", FullName: "Late", StudentID: "L",
	})
	assert.True(t, inserted)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	svc := newAuthService(t)
	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Email: "b@example.com", Password: "secret", FullName: "B", StudentID: "2"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "b@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = svc.Login(ctx, LoginInput{})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestLongPasswordsShareTruncatedPrefix(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	long := strings.Repeat("p", 72)

	_, err := svc.Register(ctx, RegisterInput{Email: "c@example.com", Password: long + "first", FullName: "C", StudentID: "3"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "c@example.com", Password: long + "second"})
	assert.NoError(t, err)
}

func TestVerifyTokenRejectsExpiredAndForeign(t *testing.T) {
	svc := newAuthService(t)

	expired, err := jwtutil.GenerateToken(testSecret, -time.Minute, 1)
	require.NoError(t, err)
	_, err = svc.VerifyToken(expired)
	assert.ErrorIs(t, err, ErrUnauthorized)

	foreign, err := jwtutil.GenerateToken("other-secret", time.Minute, 1)
	require.NoError(t, err)
	_, err = svc.VerifyToken(foreign)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.GetStudentByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
