package market

import (
	"context"

	"local_marketplace/internal/domain"
	"local_marketplace/internal/utils"
)

// Matcher resolves which users a request or a sale should reach.
// Matching is exact pincode equality; there is no radius or fuzzy match.
type Matcher struct {
	dir *Directory
}

// NewMatcher returns a matcher over dir
func NewMatcher(dir *Directory) *Matcher {
	return &Matcher{dir: dir}
}

// MatchSellers returns the ids of sellers whose current pincode equals the order's.
// The requesting buyer is never included.
func (m *Matcher) MatchSellers(ctx context.Context, order *domain.Order) []uint {
	return ids(m.dir.FindByPincode(ctx, order.Pincode, RoleSeller), order.UserID)
}

// MatchBuyers returns the ids of buyers located in pincode, minus excludeID
func (m *Matcher) MatchBuyers(ctx context.Context, pincode string, excludeID uint) []uint {
	return ids(m.dir.FindByPincode(ctx, pincode, RoleBuyer), excludeID)
}

// FilterByPincode keeps the users whose trimmed pincode equals pincode.
// An empty pincode keeps nobody.
func FilterByPincode(users []domain.User, pincode string) []domain.User {
	p := utils.NormalizePincode(pincode)
	out := make([]domain.User, 0, len(users))
	if p == "" {
		return out
	}
	for _, u := range users {
		if utils.NormalizePincode(u.Pincode) == p {
			out = append(out, u)
		}
	}
	return out
}

func ids(users []domain.User, exclude uint) []uint {
	out := make([]uint, 0, len(users))
	for _, u := range users {
		if u.ID != exclude {
			out = append(out, u.ID)
		}
	}
	return out
}
