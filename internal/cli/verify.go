package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/arnold/blueprint-api/internal/middleware"
	"github.com/arnold/blueprint-api/internal/models"
	"github.com/arnold/blueprint-api/internal/services"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a payment with Lemon Squeezy",
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().String("order", "", "Order ID")
	verifyCmd.Flags().String("checkout", "", "Legacy checkout ID")
}

func runVerify(cmd *cobra.Command, args []string) error {
	orderID, _ := cmd.Flags().GetString("order")
	checkoutID, _ := cmd.Flags().GetString("checkout")

	cfg := loadConfig()
	vendor := services.NewLemonSqueezy(cfg)
	v := &services.Verifier{
		Vendor:     vendor,
		Configured: vendor.Configured(),
		IssueToken: middleware.GenerateDownloadToken(cfg.DownloadTokenSecret),
		Now:        time.Now,
	}
	return verifyPayment(cmd.Context(), v, models.VerifyPaymentRequest{OrderID: orderID, CheckoutID: checkoutID}, cmd.OutOrStdout())
}

// verifyPayment prints the verification answer. Anything but a paid order
// is returned as an error.
func verifyPayment(ctx context.Context, v *services.Verifier, req models.VerifyPaymentRequest, out io.Writer) error {
	res := v.Verify(ctx, req)

	body, err := json.MarshalIndent(res.Body(), "", "  ")
	if err != nil {
		return err
	}

	if res.Outcome == services.OutcomePaid {
		fmt.Fprintln(out, green(fmt.Sprintf("Payment verified (order #%d)", res.Payment.OrderNumber)))
		fmt.Fprintln(out, string(body))
		return nil
	}

	fmt.Fprintln(out, red(fmt.Sprintf("HTTP %d", res.HTTPStatus)))
	fmt.Fprintln(out, string(body))
	return fmt.Errorf("verification %s: %s", res.Outcome, res.Message)
}
