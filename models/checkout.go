package models

// Gateway brands the wizard can actually drive. Channels with any other
// class name are filtered out of the checkout offer.
const (
	BrandRazorpay = "Razorpay"
	BrandPaypal   = "Paypal"
)

// Order identifies the checkout order on the remote side.
type Order struct {
	ID int `json:"id"`
}

// PaymentChannel is one gateway offered by the remote checkout.
type PaymentChannel struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	ClassName string `json:"class_name"`
	Image     string `json:"image"`
}

// CheckoutData is the remote checkout response: the order, its final
// amounts and the payment channels the user may pick from.
type CheckoutData struct {
	Order           Order            `json:"order"`
	Amounts         Amounts          `json:"amounts"`
	PaymentChannels []PaymentChannel `json:"paymentChannels"`
}

// Channel looks up an offered channel by id.
func (c CheckoutData) Channel(id int) (PaymentChannel, bool) {
	for _, ch := range c.PaymentChannels {
		if ch.ID == id {
			return ch, true
		}
	}
	return PaymentChannel{}, false
}
