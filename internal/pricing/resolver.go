// Package pricing resolves the unit price for a party size against an
// option's group-pricing tiers. All functions are pure.
package pricing

import "errors"

var (
	ErrInvalidPartySize = errors.New("invalid_party_size")
	ErrTierRange        = errors.New("invalid_tier_range")
	ErrTierOverlap      = errors.New("overlapping_tiers")
)

// Tier prices a contiguous band of party sizes.
type Tier struct {
	MinPeople int
	MaxPeople int
	Price     int64
}

// ResolveUnitPrice returns the price of the first tier, in stored order,
// whose band contains partySize. When no tier matches (including an empty
// tier list) basePrice is returned.
//
// Overlapping tiers are a data-quality defect; the first match in stored
// order wins so resolution stays deterministic. ValidateTiers rejects
// overlaps at write time.
func ResolveUnitPrice(tiers []Tier, basePrice int64, partySize int) (int64, error) {
	if partySize <= 0 {
		return 0, ErrInvalidPartySize
	}

	for _, tier := range tiers {
		if partySize >= tier.MinPeople && partySize <= tier.MaxPeople {
			return tier.Price, nil
		}
	}

	return basePrice, nil
}

// ValidateTiers checks a tier sequence before it is persisted: every band
// must be well formed (1 <= min <= max, non-negative price) and no two
// bands may overlap.
func ValidateTiers(tiers []Tier) error {
	for _, tier := range tiers {
		if tier.MinPeople < 1 || tier.MaxPeople < tier.MinPeople {
			return ErrTierRange
		}
		if tier.Price < 0 {
			return ErrTierRange
		}
	}

	for i := 0; i < len(tiers); i++ {
		for j := i + 1; j < len(tiers); j++ {
			if tiers[i].MinPeople <= tiers[j].MaxPeople && tiers[j].MinPeople <= tiers[i].MaxPeople {
				return ErrTierOverlap
			}
		}
	}

	return nil
}
