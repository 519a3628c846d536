package models

// Amounts are always server-computed; the wizard never recalculates them.
type Amounts struct {
	SubTotal        float64 `json:"sub_total"`
	TaxPrice        float64 `json:"tax_price"`
	CommissionPrice float64 `json:"commission_price"`
	Total           float64 `json:"total"`
}

// TimeRange is the start/end pair the cart uses for an item's slot.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CartItem is one reserved appointment in the cart.
type CartItem struct {
	ID          int       `json:"id"`
	TeacherName string    `json:"teacher_name"`
	Day         string    `json:"day"`
	Time        TimeRange `json:"time"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
}

// Cart is the server-side cart snapshot.
type Cart struct {
	Items   []CartItem `json:"items"`
	Amounts Amounts    `json:"amounts"`
}

// CouponStatus is the verbatim result of the last coupon validation.
type CouponStatus struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
