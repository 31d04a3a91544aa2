package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/auth"
	"github.com/cuidarbem/cuidarbem-api/models"
	"github.com/cuidarbem/cuidarbem-api/repository"
	"github.com/cuidarbem/cuidarbem-api/storage"
)

const minPasswordLength = 6

var (
	ErrUserNotFound     = newError(KindNotFound, "user not found")
	ErrDocumentNotFound = newError(KindNotFound, "document not found")
)

// RegisterInput is the registration payload. The role specific fields that do
// not belong to Role are ignored.
type RegisterInput struct {
	Name     string `json:"full_name" form:"full_name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
	Phone    string `json:"phone" form:"phone"`

	Age     *int   `json:"age" form:"age"`
	Address string `json:"address" form:"address"`

	Bio             string     `json:"bio" form:"bio"`
	ExperienceYears int        `json:"experience_years" form:"experience_years"`
	Certifications  StringList `json:"certifications" form:"certifications"`

	CRM         string     `json:"crm" form:"crm"`
	Specialty   string     `json:"specialty" form:"specialty"`
	Institution string     `json:"institution" form:"institution"`
	Documents   StringList `json:"documents" form:"documents"`

	Uploads []Upload `json:"-" form:"-"`
}

// Upload is a document attached to a doctor registration.
type Upload struct {
	Filename string
	Content  io.Reader
}

// ProfileData builds the tagged union for the requested role.
func (in RegisterInput) ProfileData() (models.ProfileData, error) {
	switch models.Role(in.Role) {
	case models.RolePatient:
		return models.PatientData{FullName: in.Name, Age: in.Age, Address: in.Address, Phone: in.Phone}, nil
	case models.RoleCaregiver:
		return models.CaregiverData{
			Bio:             in.Bio,
			ExperienceYears: in.ExperienceYears,
			Certifications:  in.Certifications.Normalize(),
		}, nil
	case models.RoleDoctor:
		return models.DoctorData{
			CRM:         in.CRM,
			Specialty:   in.Specialty,
			Institution: in.Institution,
			Documents:   in.Documents.Normalize(),
		}, nil
	}
	return nil, fieldError("role", "invalid role: must be patient, caregiver or doctor")
}

func (in RegisterInput) validate() error {
	v := &ValidationError{}
	email := normalizeEmail(in.Email)
	switch {
	case email == "":
		v.Add("email", "email is required")
	case !strings.Contains(email, "@"):
		v.Add("email", "email is invalid")
	}
	switch {
	case in.Password == "":
		v.Add("password", "password is required")
	case len(in.Password) < minPasswordLength:
		v.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if !models.Role(in.Role).Valid() {
		v.Add("role", "invalid role: must be patient, caregiver or doctor")
	}
	if in.Age != nil && (*in.Age < 0 || *in.Age > maxPatientAge) {
		v.Add("age", "age is out of range")
	}
	if in.ExperienceYears < 0 {
		v.Add("experience_years", "experience years cannot be negative")
	}
	return v.Err()
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	User      models.UserSummary `json:"user"`
}

type AuthService struct {
	store       repository.Store
	tokens      *auth.TokenIssuer
	revocations auth.RevocationStore
	documents   storage.DocumentStore
	log         *zap.Logger
}

func NewAuthService(store repository.Store, tokens *auth.TokenIssuer, revocations auth.RevocationStore, documents storage.DocumentStore, log *zap.Logger) *AuthService {
	return &AuthService{
		store:       store,
		tokens:      tokens,
		revocations: revocations,
		documents:   documents,
		log:         log,
	}
}

// Register creates the user and its single role profile in one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	data, err := in.ProfileData()
	if err != nil {
		return nil, err
	}

	if doctor, ok := data.(models.DoctorData); ok && len(in.Uploads) > 0 {
		urls, err := s.saveDocuments(ctx, in.Uploads)
		if err != nil {
			return nil, err
		}
		doctor.Documents = append(doctor.Documents, urls...)
		data = doctor
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// built per attempt: a retried transaction starts from rows without ids
	var user *models.User
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		user = &models.User{
			Name:         strings.TrimSpace(in.Name),
			Email:        normalizeEmail(in.Email),
			Phone:        strings.TrimSpace(in.Phone),
			PasswordHash: hash,
			Role:         data.Role(),
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fieldError("email", "email is already registered")
			}
			return fmt.Errorf("create user: %w", err)
		}

		profile := data.NewProfile(user.ID)
		if err := tx.Users().CreateProfile(ctx, profile); err != nil {
			return fmt.Errorf("create %s profile: %w", data.Role(), err)
		}
		user.AttachProfile(profile)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Uint("userID", user.ID), zap.String("role", user.Role.String()))
	return user, nil
}

func (s *AuthService) saveDocuments(ctx context.Context, uploads []Upload) ([]string, error) {
	if s.documents == nil {
		return nil, fieldError("documents", "document upload is not available")
	}
	urls := make([]string, 0, len(uploads))
	for _, u := range uploads {
		url, err := s.documents.Save(ctx, u.Filename, u.Content)
		if err != nil {
			return nil, fmt.Errorf("save document %s: %w", u.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Login fails with ErrInvalidCredentials for an unknown email and for a wrong
// password alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.store.Users().FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		auth.CheckPassword("", password)
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: claims.Expiry(), User: user.Summary()}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return ErrUnauthorized
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.Expiry()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// CurrentUser returns the caller with its role profile.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.UserSummary, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	summary := user.Summary()
	return &summary, nil
}

// AuthorizeDocument allows a stored document to be read only by the doctor
// whose profile lists it. Anything else is reported as not found.
func (s *AuthService) AuthorizeDocument(ctx context.Context, userID uint, url string) error {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if user.DoctorProfile == nil {
		return ErrDocumentNotFound
	}
	for _, doc := range user.DoctorProfile.Documents {
		if doc == url {
			return nil
		}
	}
	return ErrDocumentNotFound
}
