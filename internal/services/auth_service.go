package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
	"github.com/SAP-F-2025/gradequest-service/internal/validator"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "gradequest"

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Session is the authenticated caller carried by a token.
type Session struct {
	Role      Role      `json:"role"`
	StudentID string    `json:"student_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) IsTeacher() bool { return s != nil && s.Role == RoleTeacher }

// Actor names the caller in logs and events.
func (s *Session) Actor() string {
	if s == nil {
		return "anonymous"
	}
	if s.Role == RoleTeacher {
		return string(RoleTeacher)
	}
	return s.StudentID
}

type LoginResponse struct {
	Token   string   `json:"token"`
	Session *Session `json:"session"`
}

// Claims are the JWT claims of a session token.
type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

type AuthConfig struct {
	TeacherSecret string
	SigningKey    []byte
	TTL           time.Duration
}

type authService struct {
	students  repositories.GradebookRepository
	config    AuthConfig
	validator *validator.Validator
	logger    *ServiceLogger
	now       func() time.Time
}

func NewAuthService(students repositories.GradebookRepository, config AuthConfig, validator *validator.Validator, logger *ServiceLogger) AuthService {
	if config.TTL <= 0 {
		config.TTL = 12 * time.Hour
	}
	return &authService{
		students:  students,
		config:    config,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// Login opens a teacher session on the shared secret, or a student session
// for any student id the store knows.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	log := s.logger.WithOperation(ctx, "login", string(req.Role))
	session := &Session{Role: req.Role}

	switch req.Role {
	case RoleTeacher:
		if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.config.TeacherSecret)) != 1 {
			log.LogSecurity(SecurityEventLoginFailed, SecuritySeverityMedium, "teacher login with wrong secret", nil)
			return nil, ErrInvalidCredentials
		}
	case RoleStudent:
		studentID := strings.TrimSpace(req.StudentID)
		if studentID == "" {
			return nil, NewValidationError("student_id", "is required", nil)
		}
		if _, err := s.students.GetStudent(ctx, studentID); err != nil {
			if repositories.IsNotFoundError(err) {
				log.LogSecurity(SecurityEventLoginFailed, SecuritySeverityLow, "student login for unknown id",
					map[string]interface{}{"student_id": studentID})
				return nil, ErrInvalidCredentials
			}
			return nil, storeError(err, ErrStudentNotFound)
		}
		session.StudentID = studentID
	}

	token, err := s.issue(session)
	if err != nil {
		return nil, err
	}
	log.LogResult(session.StudentID, "session", nil)
	return &LoginResponse{Token: token, Session: session}, nil
}

func (s *authService) issue(session *Session) (string, error) {
	now := s.now()
	session.ExpiresAt = now.Add(s.config.TTL)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   session.StudentID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		Role: session.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.SigningKey)
	if err != nil {
		return "", errors.Join(ErrInternalError, err)
	}
	return signed, nil
}

func (s *authService) ParseToken(tokenString string) (*Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return s.config.SigningKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	switch claims.Role {
	case RoleTeacher:
	case RoleStudent:
		if claims.Subject == "" {
			return nil, ErrInvalidToken
		}
	default:
		return nil, ErrInvalidToken
	}

	session := &Session{Role: claims.Role, StudentID: claims.Subject}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
