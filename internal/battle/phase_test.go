package battle_test

import (
	"errors"
	"testing"

	"github.com/marketarena/marketplace-api/internal/battle"
	"github.com/marketarena/marketplace-api/internal/utils"
)

func TestParsePhase(t *testing.T) {
	for _, raw := range []string{"open", "seller_management", "buyer_shopping"} {
		phase, err := battle.ParsePhase(raw)
		if err != nil {
			t.Errorf("ParsePhase(%q): %v", raw, err)
		}
		if string(phase) != raw {
			t.Errorf("ParsePhase(%q) = %q", raw, phase)
		}
	}

	for _, raw := range []string{"", "OPEN", "closed", "seller"} {
		if _, err := battle.ParsePhase(raw); err == nil {
			t.Errorf("ParsePhase(%q) should fail", raw)
		}
	}
}

func TestAuthorize_Matrix(t *testing.T) {
	tests := []struct {
		phase   battle.Phase
		cap     battle.Capability
		allowed bool
	}{
		{battle.PhaseOpen, battle.CapabilitySellerWrite, true},
		{battle.PhaseOpen, battle.CapabilityBuyerWrite, true},
		{battle.PhaseSellerManagement, battle.CapabilitySellerWrite, true},
		{battle.PhaseSellerManagement, battle.CapabilityBuyerWrite, false},
		{battle.PhaseBuyerShopping, battle.CapabilitySellerWrite, false},
		{battle.PhaseBuyerShopping, battle.CapabilityBuyerWrite, true},
	}

	for _, tt := range tests {
		err := battle.Authorize(tt.phase, tt.cap)
		if tt.allowed && err != nil {
			t.Errorf("Authorize(%q, %q) should pass: %v", tt.phase, tt.cap, err)
		}
		if !tt.allowed && !errors.Is(err, utils.ErrPhaseViolation) {
			t.Errorf("Authorize(%q, %q) should fail with ErrPhaseViolation, got %v", tt.phase, tt.cap, err)
		}
	}
}

func TestAuthorize_UnknownPhase(t *testing.T) {
	if err := battle.Authorize("halted", battle.CapabilitySellerWrite); !errors.Is(err, utils.ErrPhaseViolation) {
		t.Fatalf("unknown phase should deny with ErrPhaseViolation, got %v", err)
	}
}
