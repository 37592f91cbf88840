package service

import (
	"github.com/aadhilm732/TGTPETSUAE/internal/models"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// cartLine is one resolved line of a checkout: the product's current record
// and the requested quantity. Unit price comes from the catalog, never from
// the client.
type cartLine struct {
	Product  models.Product
	Quantity int
}

// vendorGroup is the subset of a checkout's lines belonging to one store
type vendorGroup struct {
	StoreID int64
	Lines   []cartLine
}

// groupTotal is the priced result for one vendor group
type groupTotal struct {
	StoreID int64
	Total   decimal.Decimal
	Lines   []cartLine
}

// groupByVendor partitions lines by owning store, preserving the first-seen
// order of stores. The first group is the one that absorbs the shipping fee,
// so this order must be deterministic.
func groupByVendor(lines []cartLine) []vendorGroup {
	index := make(map[int64]int)
	groups := make([]vendorGroup, 0, len(lines))

	for _, line := range lines {
		storeID := line.Product.StoreID
		i, seen := index[storeID]
		if !seen {
			i = len(groups)
			index[storeID] = i
			groups = append(groups, vendorGroup{StoreID: storeID})
		}
		groups[i].Lines = append(groups[i].Lines, line)
	}
	return groups
}

// checkCouponEligibility enforces the coupon's gates: forNewUser coupons
// require zero prior orders, forMember coupons require the membership tier.
func checkCouponEligibility(coupon *models.Coupon, priorOrders int, isMember bool) error {
	if coupon == nil {
		return nil
	}
	if coupon.ForNewUser && priorOrders > 0 {
		return ErrCouponIneligible
	}
	if coupon.ForMember && !isMember {
		return ErrCouponMemberOnly
	}
	return nil
}

// priceVendorGroups computes each group's total and the checkout aggregate.
//
// Per group: subtotal = Σ price×qty, minus the coupon's percent discount when
// a coupon is present. The flat shipping fee is charged exactly once per
// checkout, to the first group, and only when the user is not a member.
// Each group total is rounded to 2 decimal places before it is persisted and
// before it is summed into the aggregate.
func priceVendorGroups(groups []vendorGroup, coupon *models.Coupon, isMember bool, shippingFee decimal.Decimal) ([]groupTotal, decimal.Decimal) {
	totals := make([]groupTotal, 0, len(groups))
	aggregate := decimal.Zero
	feeCharged := false

	for _, group := range groups {
		subtotal := decimal.Zero
		for _, line := range group.Lines {
			subtotal = subtotal.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		total := subtotal
		if coupon != nil {
			discount := subtotal.Mul(coupon.Discount).Div(oneHundred)
			total = total.Sub(discount)
		}
		if !isMember && !feeCharged {
			total = total.Add(shippingFee)
			feeCharged = true
		}

		total = total.Round(2)
		aggregate = aggregate.Add(total)

		totals = append(totals, groupTotal{
			StoreID: group.StoreID,
			Total:   total,
			Lines:   group.Lines,
		})
	}

	return totals, aggregate
}
