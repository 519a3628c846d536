package wizard

import (
	"context"

	"go.uber.org/zap"

	"fitbuds/models"
	"fitbuds/services/identity"
	"fitbuds/services/payment"
	"fitbuds/services/remote"
)

// Pay runs the whole payment leg for the chosen channel: open a payment
// attempt on the remote API, drive the gateway adapter, then always report
// the outcome back through verification. Only a successful verification
// reaches StepDone; anything else lands in StepPaymentFailed, from which
// paying again is allowed.
func (s *DefaultWizardService) Pay(ctx context.Context, sessionID string, channelID int) (*models.WizardSession, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != models.StepPaymentSelect && sess.Step != models.StepPaymentFailed {
		return s.fail(ctx, sess, &StepError{Message: "checkout has not finished yet"}, "")
	}
	if sess.CheckoutData == nil {
		return s.fail(ctx, sess, &identity.ValidationError{Field: "checkout", Message: "checkout has not finished yet"}, "")
	}
	if !sess.Authenticated() {
		return s.fail(ctx, sess, &identity.AuthenticationError{Message: "user not authenticated, please register or log in"}, "")
	}

	channel, ok := sess.CheckoutData.Channel(channelID)
	if !ok {
		return s.fail(ctx, sess, &identity.ValidationError{Field: "channel", Message: "please choose a payment method"}, "")
	}
	gateway, err := s.Gateways.Gateway(channel.ClassName)
	if err != nil {
		return s.fail(ctx, sess, err, "")
	}

	orderID := sess.CheckoutData.Order.ID
	if err := s.Remote.RequestPayment(ctx, sess.RemoteToken, sess.RemoteUserID, channel.ID, orderID); err != nil {
		return s.fail(ctx, sess, err, "Error initiating payment.")
	}

	intent := payment.Intent{
		OrderID:     orderID,
		GatewayID:   channel.ID,
		Amount:      sess.CheckoutData.Amounts.Total,
		Description: paymentDescription(sess),
		ThemeColor:  s.Cfg.PrimaryColor,
		PayerName:   sess.User.FullName,
		PayerEmail:  sess.User.Email,
		PayerMobile: sess.User.Mobile,
	}
	if sess.SelectedProvider != nil {
		intent.Image = sess.SelectedProvider.Avatar
	}
	result := gateway.Pay(ctx, intent)

	// The verify round-trip happens even when the gateway failed; empty
	// references tell the remote side the attempt died.
	verified, err := s.Remote.VerifyPayment(ctx, remote.VerifyRequest{
		Brand:             channel.ClassName,
		AuthID:            sess.RemoteUserID,
		GatewayID:         channel.ID,
		OrderID:           orderID,
		RazorpayPaymentID: result.RazorpayPaymentID,
		RazorpayOrderID:   result.RazorpayOrderID,
		PaypalPaymentID:   result.PaypalPaymentID,
	})
	if err != nil {
		sess.Step = models.StepPaymentFailed
		return s.fail(ctx, sess, err, "Error verifying payment.")
	}

	if verified {
		sess.Step = models.StepDone
		s.Logger.Info("payment verified",
			zap.String("sessionId", sess.SessionID),
			zap.String("gateway", channel.ClassName),
			zap.Int("orderId", orderID))
		return s.ok(ctx, sess)
	}

	sess.Step = models.StepPaymentFailed
	msg := result.FailureMessage
	if msg == "" {
		msg = "Payment failed. Please try again."
	}
	sess.LastError = msg
	if err := s.Store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func paymentDescription(sess *models.WizardSession) string {
	if sess.SelectedProvider == nil {
		return "Appointment"
	}
	return "Appointment with " + sess.SelectedProvider.FullName
}
