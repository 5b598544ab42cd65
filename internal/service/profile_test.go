package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan4farm-api/internal/model"
	"loan4farm-api/internal/repository"
)

// plainSealer is a reversible stand-in for the PGP manager
type plainSealer struct{}

func (plainSealer) Encrypt(s string) (string, error) { return "enc:" + s, nil }
func (plainSealer) Decrypt(s string) (string, error) { return strings.TrimPrefix(s, "enc:"), nil }
func (plainSealer) Digest(s string) string           { return "digest:" + s }

func newProfileService(t *testing.T) *ProfileService {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repository.Migrate(ctx, db, "sqlite", testLogger()))

	return NewProfileService(repository.NewProfileRepository(db, testLogger()), plainSealer{}, testLogger())
}

func TestProfile_FindOrCreate(t *testing.T) {
	svc := newProfileService(t)
	ctx := context.Background()

	p, created, err := svc.FindOrCreate(ctx, model.MethodAadhaar, "1234 5678 9012")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Ram Singh Ji", p.Name)
	assert.Equal(t, "Bhopur Village", p.Location)
	assert.Equal(t, model.CropNotSelected, p.Crop)
	assert.Equal(t, model.LoanActive, p.LoanStatus)
	assert.Equal(t, 75000.0, p.LoanAmount)
	assert.Equal(t, "XXXX XXXX 9012", p.Response().MaskedIdentifier)

	again, created, err := svc.FindOrCreate(ctx, model.MethodAadhaar, "123456789012")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, "123456789012", again.Identifier)

	// same digits by another method is another farmer
	other, created, err := svc.FindOrCreate(ctx, model.MethodMobile, "123456789012")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, p.ID, other.ID)
}

func TestProfile_Update(t *testing.T) {
	svc := newProfileService(t)
	ctx := context.Background()
	p, _, err := svc.FindOrCreate(ctx, model.MethodMobile, "9876543210")
	require.NoError(t, err)

	crop, email := "Cotton", "ram@example.com"
	updated, err := svc.Update(ctx, p.ID, model.UpdateProfileInput{Crop: &crop, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Cotton", updated.Crop)
	assert.Equal(t, "ram@example.com", updated.Email)
	assert.Equal(t, "+91 XXXXX XX210", updated.Response().MaskedIdentifier)

	bad := "Dragonfruit"
	_, err = svc.Update(ctx, p.ID, model.UpdateProfileInput{Crop: &bad})
	assert.ErrorIs(t, err, ErrUnknownCrop)
}

func TestProfile_MissingProfile(t *testing.T) {
	svc := newProfileService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.ErrorIs(t, svc.UpdateEmail(ctx, uuid.New(), "a@b.c"), ErrProfileNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), ErrProfileNotFound)
}

func TestProfile_DeleteAndLoans(t *testing.T) {
	svc := newProfileService(t)
	ctx := context.Background()
	p, _, err := svc.FindOrCreate(ctx, model.MethodMobile, "9876543210")
	require.NoError(t, err)

	require.NoError(t, svc.SetLoan(ctx, p.ID, 120000))
	active, err := svc.ListActiveLoans(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 120000.0, active[0].LoanAmount)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
