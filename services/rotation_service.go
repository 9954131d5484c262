package services

import (
	"fmt"
	"math/rand"

	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/utils"
)

// RotationService computes the beneficiary order for a group's tours.
// It is pure: no I/O, the caller supplies the member list and the random
// source used by the shuffling policies.
type RotationService struct{}

// NewRotationService creates a new rotation service
func NewRotationService() *RotationService {
	return &RotationService{}
}

// AssignBeneficiaries produces the beneficiary for each of totalTours tours.
//
// FIXED_ORDER and SEQUENTIAL assign members in join order, cycling once every
// member has had a tour. RANDOM and SHUFFLE compute one permutation from rng
// and then cycle it; the result is persisted by the caller, so re-running
// generation never reshuffles already-scheduled tours. CUSTOM uses the
// caller-supplied order verbatim and requires it to be a permutation of the
// members.
func (s *RotationService) AssignBeneficiaries(members []string, policy models.RotationPolicy, totalTours int, customOrder []string, rng *rand.Rand) ([]string, error) {
	if err := utils.ValidateNotEmpty(members, "members"); err != nil {
		return nil, err
	}
	if totalTours < len(members) {
		return nil, utils.NewValidationError(
			fmt.Sprintf("total tours (%d) must cover every member at least once (%d members)", totalTours, len(members)))
	}
	if seen := duplicated(members); seen != "" {
		return nil, utils.NewValidationError(fmt.Sprintf("duplicate member %s in rotation input", seen))
	}

	var order []string
	switch policy {
	case models.RotationFixedOrder, models.RotationSequential:
		order = members
	case models.RotationRandom, models.RotationShuffle:
		if rng == nil {
			return nil, utils.NewValidationError("random source is required for shuffled rotation")
		}
		order = make([]string, len(members))
		copy(order, members)
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	case models.RotationCustom:
		if err := validatePermutation(customOrder, members); err != nil {
			return nil, err
		}
		order = customOrder
	default:
		return nil, utils.NewValidationError(fmt.Sprintf("unknown rotation policy %q", policy))
	}

	assignments := make([]string, totalTours)
	for i := 0; i < totalTours; i++ {
		assignments[i] = order[i%len(order)]
	}
	return assignments, nil
}

// validatePermutation checks that order contains exactly the given members
func validatePermutation(order, members []string) error {
	if len(order) != len(members) {
		return utils.NewValidationError("custom order must contain every member exactly once")
	}
	expected := make(map[string]bool, len(members))
	for _, m := range members {
		expected[m] = true
	}
	seen := make(map[string]bool, len(order))
	for _, m := range order {
		if !expected[m] {
			return utils.NewValidationError(fmt.Sprintf("custom order contains %s who is not a member", m))
		}
		if seen[m] {
			return utils.NewValidationError(fmt.Sprintf("custom order lists %s more than once", m))
		}
		seen[m] = true
	}
	return nil
}

// duplicated returns the first duplicated entry, or "" when all are distinct
func duplicated(members []string) string {
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if seen[m] {
			return m
		}
		seen[m] = true
	}
	return ""
}
