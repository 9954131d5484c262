package services

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sahelpay/tontine-backend/middleware"
	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/repository"
	"github.com/sahelpay/tontine-backend/utils"
)

// AuthService handles registration and login
type AuthService struct {
	personRepo *repository.PersonRepository
	jwtManager *middleware.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(personRepo *repository.PersonRepository, jwtManager *middleware.JWTManager) *AuthService {
	return &AuthService{
		personRepo: personRepo,
		jwtManager: jwtManager,
	}
}

// Register creates a person account with a bcrypt-hashed PIN
func (s *AuthService) Register(name, phone, pin string) (*models.Person, error) {
	if err := utils.ValidateRequired(name, "name"); err != nil {
		return nil, err
	}
	if err := utils.ValidateRequired(phone, "phone"); err != nil {
		return nil, err
	}
	if len(pin) < 4 {
		return nil, utils.NewValidationError("pin must be at least 4 characters")
	}

	existing, err := s.personRepo.GetPersonByPhone(phone)
	if err != nil {
		return nil, utils.NewInternalError("Failed to look up person")
	}
	if existing != nil {
		return nil, utils.NewConflictError("phone number is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewInternalError("Failed to hash pin")
	}

	person := &models.Person{
		ID:        utils.GenerateID(),
		Name:      name,
		Phone:     phone,
		PinHash:   string(hash),
		CreatedAt: time.Now(),
	}
	if err := s.personRepo.CreatePerson(person); err != nil {
		return nil, utils.NewInternalError("Failed to store person")
	}
	return person, nil
}

// Login checks the phone/PIN pair and issues a JWT
func (s *AuthService) Login(req *models.LoginRequest) (*models.LoginResponse, error) {
	person, err := s.personRepo.GetPersonByPhone(req.Phone)
	if err != nil {
		return nil, utils.NewInternalError("Failed to look up person")
	}
	if person == nil {
		return nil, utils.NewForbiddenError("invalid phone or pin")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(person.PinHash), []byte(req.Pin)); err != nil {
		return nil, utils.NewForbiddenError("invalid phone or pin")
	}

	token, err := s.jwtManager.Generate(person.ID, person.Name)
	if err != nil {
		return nil, utils.NewInternalError("Failed to issue token")
	}
	return &models.LoginResponse{
		Token:    token,
		PersonID: person.ID,
		Name:     person.Name,
	}, nil
}
