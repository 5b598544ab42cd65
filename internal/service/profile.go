package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"loan4farm-api/internal/crypto"
	"loan4farm-api/internal/model"
	"loan4farm-api/internal/repository"
	"loan4farm-api/internal/scoring"
)

// Mock profile given to every new farmer
const (
	mockName       = "Ram Singh Ji"
	mockLocation   = "Bhopur Village"
	mockLoanAmount = 75000
)

type ProfileService struct {
	repo   *repository.ProfileRepository
	sealer crypto.Sealer
	logger *logrus.Logger
}

func NewProfileService(repo *repository.ProfileRepository, sealer crypto.Sealer, logger *logrus.Logger) *ProfileService {
	return &ProfileService{repo: repo, sealer: sealer, logger: logger}
}

// lookupKey - digest of the normalized identifier, scoped by login method
func (s *ProfileService) lookupKey(method model.LoginMethod, identifier string) string {
	return s.sealer.Digest(string(method) + ":" + model.DigitsOnly(identifier))
}

// FindOrCreate returns the profile bound to the identifier, creating the mock one on first login
func (s *ProfileService) FindOrCreate(ctx context.Context, method model.LoginMethod, identifier string) (*model.UserProfile, bool, error) {
	digest := s.lookupKey(method, identifier)

	p, err := s.repo.FindByIdentifierHMAC(ctx, digest)
	if err == nil {
		return s.open(p)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("Failed to look up profile")
		return nil, false, fmt.Errorf("failed to look up profile: %w", err)
	}

	enc, err := s.sealer.Encrypt(model.DigitsOnly(identifier))
	if err != nil {
		s.logger.WithError(err).Error("Failed to encrypt identifier")
		return nil, false, fmt.Errorf("failed to encrypt identifier: %w", err)
	}

	now := time.Now().UTC()
	p = &model.UserProfile{
		ID:             uuid.New(),
		Name:           mockName,
		Location:       mockLocation,
		Method:         method,
		Identifier:     model.DigitsOnly(identifier),
		IdentifierHMAC: digest,
		IdentifierEnc:  enc,
		Crop:           model.CropNotSelected,
		LoanStatus:     model.LoanActive,
		LoanAmount:     mockLoanAmount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// concurrent first login with the same identifier
			existing, findErr := s.repo.FindByIdentifierHMAC(ctx, digest)
			if findErr != nil {
				return nil, false, fmt.Errorf("failed to load profile: %w", findErr)
			}
			return s.open(existing)
		}
		s.logger.WithError(err).Error("Failed to create profile")
		return nil, false, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.WithField("profile_id", p.ID).Info("Profile created")
	return p, true, nil
}

func (s *ProfileService) open(p *model.UserProfile) (*model.UserProfile, bool, error) {
	plain, err := s.sealer.Decrypt(p.IdentifierEnc)
	if err != nil {
		s.logger.WithError(err).WithField("profile_id", p.ID).Error("Failed to decrypt identifier")
		return nil, false, fmt.Errorf("failed to decrypt identifier: %w", err)
	}
	p.Identifier = plain
	return p, false, nil
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.WithError(err).Error("Failed to get profile")
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	p, _, err = s.open(p)
	return p, err
}

// UpdateCrop stores the canonical crop name; only table crops are accepted
func (s *ProfileService) UpdateCrop(ctx context.Context, id uuid.UUID, crop string) error {
	econ, ok := scoring.LookupCrop(strings.TrimSpace(crop))
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCrop, crop)
	}
	return s.mapNotFound(s.repo.UpdateCrop(ctx, id, econ.Name))
}

func (s *ProfileService) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	return s.mapNotFound(s.repo.UpdateEmail(ctx, id, strings.TrimSpace(email)))
}

// Update applies the profile modal changes and returns the fresh profile
func (s *ProfileService) Update(ctx context.Context, id uuid.UUID, input model.UpdateProfileInput) (*model.UserProfile, error) {
	if input.Crop != nil {
		if err := s.UpdateCrop(ctx, id, *input.Crop); err != nil {
			return nil, err
		}
	}
	if input.Email != nil {
		if err := s.UpdateEmail(ctx, id, *input.Email); err != nil {
			return nil, err
		}
	}
	s.logger.WithField("profile_id", id).Info("Profile updated")
	return s.Get(ctx, id)
}

// SetLoan marks a disbursed loan on the profile
func (s *ProfileService) SetLoan(ctx context.Context, id uuid.UUID, amount float64) error {
	return s.mapNotFound(s.repo.UpdateLoan(ctx, id, model.LoanActive, amount))
}

func (s *ProfileService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.mapNotFound(s.repo.Delete(ctx, id)); err != nil {
		return err
	}
	s.logger.WithField("profile_id", id).Info("Profile deleted")
	return nil
}

func (s *ProfileService) ListActiveLoans(ctx context.Context) ([]model.UserProfile, error) {
	return s.repo.ListActiveLoans(ctx)
}

func (s *ProfileService) mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProfileNotFound
	}
	if err != nil {
		s.logger.WithError(err).Error("Profile update failed")
	}
	return err
}
