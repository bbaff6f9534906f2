package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"assignment-helper/internal/model"
	"assignment-helper/internal/pkg/hashutil"
	"assignment-helper/internal/pkg/jwtutil"
	"assignment-helper/internal/repository"
)

const TokenTypeBearer = "bearer"

type AuthService struct {
	studentRepo   *repository.StudentRepository
	jwtSecret     string
	jwtExpiration time.Duration
	logger        *zap.Logger
}

type RegisterInput struct {
	Email     string
	Password  string
	FullName  string
	StudentID string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func NewAuthService(studentRepo *repository.StudentRepository, jwtSecret string, jwtExpiration time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		studentRepo:   studentRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		logger:        logger,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.Student, error) {
	email := normalizeEmail(input.Email)
	fullName := strings.TrimSpace(input.FullName)
	studentID := strings.TrimSpace(input.StudentID)
	if email == "" || input.Password == "" || fullName == "" || studentID == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.studentRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	if hashutil.Truncated(input.Password) {
		s.logger.Warn("password longer than bcrypt limit, truncating", zap.String("email", email))
	}
	hash, err := hashutil.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		StudentID:    studentID,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		// A concurrent registration can win between the lookup and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	s.logger.Info("student registered", zap.Uint("student_id", student.ID))
	return student, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredential
	}

	student, err := s.studentRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if student == nil || !hashutil.Verify(input.Password, student.PasswordHash) {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, student.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

// VerifyToken returns the student id carried by a bearer token. Every
// failure collapses to ErrUnauthorized.
func (s *AuthService) VerifyToken(token string) (uint, error) {
	studentID, err := jwtutil.ParseToken(s.jwtSecret, token)
	if err != nil {
		return 0, ErrUnauthorized
	}
	return studentID, nil
}

func (s *AuthService) GetStudentByID(ctx context.Context, id uint) (*model.Student, error) {
	if id == 0 {
		return nil, ErrUnauthorized
	}
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrUnauthorized
	}
	return student, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
