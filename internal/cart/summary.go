package cart

import "github.com/iHerbYou/i-Herb-You-React-sub000/internal/pricing"

// Summary is the preview total over the selected lines. It is recomputed
// from the current line list on demand and is not authoritative; the backend
// recomputes the real total at order creation.
type Summary struct {
	SelectedCount int   `json:"selectedCount"`
	Subtotal      int64 `json:"subtotal"`
	DeliveryFee   int64 `json:"deliveryFee"`
	Total         int64 `json:"total"`
}

func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum Summary
	for _, line := range s.lines {
		if !line.Selected {
			continue
		}
		sum.SelectedCount++
		sum.Subtotal += line.UnitPrice * int64(line.Quantity)
	}
	sum.DeliveryFee = pricing.DeliveryFee(sum.Subtotal)
	sum.Total = pricing.OrderTotal(sum.Subtotal, sum.DeliveryFee, 0, 0)
	return sum
}
