package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/utils"
)

func TestAssignBeneficiaries_FixedOrderCycles(t *testing.T) {
	service := NewRotationService()
	members := []string{"awa", "bakary", "coumba", "demba"}

	assignments, err := service.AssignBeneficiaries(members, models.RotationFixedOrder, 10, nil, nil)
	assert.NoError(t, err)
	assert.Len(t, assignments, 10)

	// First cycle covers every member in join order
	assert.Equal(t, members, assignments[:4])
	// Every later entry repeats its position in the cycle
	for i, beneficiary := range assignments {
		assert.Equal(t, members[i%len(members)], beneficiary, "entry %d", i)
	}
}

func TestAssignBeneficiaries_SequentialSameAsFixed(t *testing.T) {
	service := NewRotationService()
	members := []string{"awa", "bakary", "coumba"}

	fixed, err := service.AssignBeneficiaries(members, models.RotationFixedOrder, 6, nil, nil)
	assert.NoError(t, err)
	sequential, err := service.AssignBeneficiaries(members, models.RotationSequential, 6, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, fixed, sequential)
}

func TestAssignBeneficiaries_ShuffleIsPermutationAndCycles(t *testing.T) {
	service := NewRotationService()
	members := []string{"awa", "bakary", "coumba", "demba", "elhadj"}
	rng := rand.New(rand.NewSource(42))

	assignments, err := service.AssignBeneficiaries(members, models.RotationShuffle, 12, nil, rng)
	assert.NoError(t, err)
	assert.Len(t, assignments, 12)

	// The first cycle is a permutation of the member set
	assert.ElementsMatch(t, members, assignments[:5])
	// The permutation repeats, it is never reshuffled mid-run
	for i := 5; i < len(assignments); i++ {
		assert.Equal(t, assignments[i%5], assignments[i])
	}
}

func TestAssignBeneficiaries_ShuffleDeterministicForSeed(t *testing.T) {
	service := NewRotationService()
	members := []string{"awa", "bakary", "coumba", "demba"}

	first, err := service.AssignBeneficiaries(members, models.RotationRandom, 8, nil, rand.New(rand.NewSource(7)))
	assert.NoError(t, err)
	second, err := service.AssignBeneficiaries(members, models.RotationRandom, 8, nil, rand.New(rand.NewSource(7)))
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAssignBeneficiaries_CustomOrder(t *testing.T) {
	service := NewRotationService()
	members := []string{"awa", "bakary", "coumba"}
	custom := []string{"coumba", "awa", "bakary"}

	assignments, err := service.AssignBeneficiaries(members, models.RotationCustom, 6, custom, nil)
	assert.NoError(t, err)
	assert.Equal(t, []string{"coumba", "awa", "bakary", "coumba", "awa", "bakary"}, assignments)
}

func TestAssignBeneficiaries_CustomOrderRejectsBadPermutations(t *testing.T) {
	service := NewRotationService()
	members := []string{"awa", "bakary", "coumba"}

	cases := []struct {
		name  string
		order []string
	}{
		{"missing member", []string{"awa", "bakary"}},
		{"stranger", []string{"awa", "bakary", "zal"}},
		{"duplicate", []string{"awa", "awa", "bakary"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.AssignBeneficiaries(members, models.RotationCustom, 3, tc.order, nil)
			assert.Error(t, err)
			assert.True(t, utils.IsKind(err, utils.KindValidation))
		})
	}
}

func TestAssignBeneficiaries_InputValidation(t *testing.T) {
	service := NewRotationService()

	_, err := service.AssignBeneficiaries(nil, models.RotationFixedOrder, 4, nil, nil)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	// Fewer tours than members leaves someone without a payout
	_, err = service.AssignBeneficiaries([]string{"awa", "bakary", "coumba"}, models.RotationFixedOrder, 2, nil, nil)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = service.AssignBeneficiaries([]string{"awa", "awa"}, models.RotationFixedOrder, 2, nil, nil)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = service.AssignBeneficiaries([]string{"awa", "bakary"}, models.RotationShuffle, 2, nil, nil)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}
