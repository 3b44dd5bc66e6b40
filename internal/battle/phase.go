// Package battle defines the marketplace phase machine and battle state. The
// phase decides which actor class may mutate the marketplace at any moment;
// the orchestrator flips it between seller and buyer windows.
package battle

import (
	"fmt"

	"github.com/marketarena/marketplace-api/internal/utils"
)

// Phase enumerates the marketplace lifecycle phases.
type Phase string

const (
	// PhaseOpen permits both seller and buyer writes.
	PhaseOpen Phase = "open"
	// PhaseSellerManagement permits only listing creation and updates.
	PhaseSellerManagement Phase = "seller_management"
	// PhaseBuyerShopping permits only purchases.
	PhaseBuyerShopping Phase = "buyer_shopping"
)

// Capability tags the class of mutation an actor requests.
type Capability string

const (
	CapabilitySellerWrite Capability = "seller_write"
	CapabilityBuyerWrite  Capability = "buyer_write"
)

// ParsePhase validates a phase name from the wire.
func ParsePhase(raw string) (Phase, error) {
	switch Phase(raw) {
	case PhaseOpen:
		return PhaseOpen, nil
	case PhaseSellerManagement:
		return PhaseSellerManagement, nil
	case PhaseBuyerShopping:
		return PhaseBuyerShopping, nil
	default:
		return "", fmt.Errorf("unknown phase %q", raw)
	}
}

// Authorize checks whether the requested capability is permitted under the
// given phase. Denials surface as ErrPhaseViolation; reads are never gated.
func Authorize(phase Phase, cap Capability) error {
	switch phase {
	case PhaseOpen:
		return nil
	case PhaseSellerManagement:
		if cap == CapabilitySellerWrite {
			return nil
		}
	case PhaseBuyerShopping:
		if cap == CapabilityBuyerWrite {
			return nil
		}
	default:
		return fmt.Errorf("%w: unknown phase %q", utils.ErrPhaseViolation, phase)
	}
	return fmt.Errorf("%w: %s not permitted during phase %q",
		utils.ErrPhaseViolation, cap, phase)
}

// State is a snapshot of the battle coordinates under which an operation runs.
type State struct {
	BattleID string `json:"battleId"`
	Phase    Phase  `json:"phase"`
	Day      int    `json:"day"`
	Round    int    `json:"round"`
}
