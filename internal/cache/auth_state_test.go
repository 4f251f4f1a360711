package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"
)

func TestUserAuthStateChecks(t *testing.T) {
	invalidBefore := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	state := BuildUserAuthState(&models.User{
		ID:                 7,
		Role:               constants.RoleEmployee,
		Status:             " Active ",
		TokenVersion:       3,
		TokenInvalidBefore: &invalidBefore,
	})

	if !state.Active() || !state.IsStaff() {
		t.Fatalf("employee state should be active staff: %+v", state)
	}
	before := invalidBefore.Add(-time.Minute)
	after := invalidBefore.Add(time.Minute)
	if state.AcceptsToken(3, &before) {
		t.Fatalf("token issued before invalidation should be rejected")
	}
	if !state.AcceptsToken(3, &invalidBefore) || !state.AcceptsToken(3, &after) {
		t.Fatalf("token issued at or after invalidation should be accepted")
	}
	if state.AcceptsToken(2, &after) || state.AcceptsToken(3, nil) {
		t.Fatalf("old version or missing iat should be rejected")
	}

	customer := BuildUserAuthState(&models.User{ID: 8, Role: constants.RoleUser, Status: constants.UserStatusDisabled})
	if customer.Active() || customer.IsStaff() {
		t.Fatalf("disabled customer unexpected: %+v", customer)
	}
	if !customer.AcceptsToken(0, nil) {
		t.Fatalf("without invalidation point any iat is accepted")
	}
	if BuildUserAuthState(nil) != nil {
		t.Fatalf("nil user should build nil state")
	}
}

func TestLoadUserAuthStateFallsBackToLoader(t *testing.T) {
	calls := 0
	load := func(id uint) (*models.User, error) {
		calls++
		if id == 404 {
			return nil, nil
		}
		if id == 500 {
			return nil, errors.New("db down")
		}
		return &models.User{ID: id, Role: constants.RoleUser, Status: constants.UserStatusActive}, nil
	}
	ctx := context.Background()

	state, err := LoadUserAuthState(ctx, 9, load)
	if err != nil || state == nil || state.UserID != 9 {
		t.Fatalf("load state failed: %+v %v", state, err)
	}
	if state, err := LoadUserAuthState(ctx, 404, load); err != nil || state != nil {
		t.Fatalf("missing user want nil,nil got %+v %v", state, err)
	}
	if _, err := LoadUserAuthState(ctx, 500, load); err == nil {
		t.Fatalf("loader error should propagate")
	}
	if state, _ := LoadUserAuthState(ctx, 0, load); state != nil || calls != 3 {
		t.Fatalf("zero id should not call loader, calls=%d", calls)
	}
}
