package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/agrosub/agrosub-backend/internal/types"
)

func strPtr(s string) *string { return &s }

func TestUpsertProfile_RejectsUnknownType(t *testing.T) {
	svc := NewProfileService(nil, testLogger(t), &fakeProfileRepo{}, nil, nil)
	_, err := svc.UpsertProfile(context.Background(), &types.Profile{
		ID:          uuid.New(),
		Name:        "Awa",
		ProfileType: "astronaute",
	})
	if err != ErrInvalidProfileType {
		t.Fatalf("expected ErrInvalidProfileType, got %v", err)
	}
}

func TestUpsertProfile_ComputesCompletion(t *testing.T) {
	svc := NewProfileService(nil, testLogger(t), &fakeProfileRepo{}, nil, nil)

	incomplete, err := svc.UpsertProfile(context.Background(), &types.Profile{
		ID:          uuid.New(),
		Name:        "Awa",
		ProfileType: types.ProfileTypeEntrepreneur,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if incomplete.ProfileCompleted {
		t.Fatalf("a profile without location and sectors must not count as complete")
	}

	complete, err := svc.UpsertProfile(context.Background(), &types.Profile{
		ID:          uuid.New(),
		Name:        "Awa",
		ProfileType: types.ProfileTypeEntrepreneur,
		Location:    strPtr("Bouaké"),
		Sectors:     datatypes.JSON([]byte(`["maraîchage"]`)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !complete.ProfileCompleted {
		t.Fatalf("expected the filled profile to count as complete")
	}
}

func TestIsValidProfileType(t *testing.T) {
	for _, valid := range []string{
		types.ProfileTypeEntrepreneur,
		types.ProfileTypeCooperative,
		types.ProfileTypeInvestor,
		types.ProfileTypeIncubator,
		types.ProfileTypeInstitution,
	} {
		if !types.IsValidProfileType(valid) {
			t.Fatalf("expected %q to be valid", valid)
		}
	}
	if types.IsValidProfileType("Entrepreneur") {
		t.Fatalf("profile types are stored lowercase")
	}
}
