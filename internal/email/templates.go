package email

import (
	"fmt"
	"strings"
)

// OrderSummary carries what the confirmation templates need about an order.
type OrderSummary struct {
	OrderID     string
	Date        string
	FillingName string
	Bread       bool
}

// BuildOrderConfirmationBody builds the HTML body for the order confirmation
// email.
func BuildOrderConfirmationBody(o OrderSummary) string {
	bread := "no"
	if o.Bread {
		bread = "yes"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Your lunch order is in</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Thanks for ordering. Here is what we have for you.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order reference</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>

		<h2 style="font-size: 18px; border-bottom: 2px solid #667eea; padding-bottom: 10px;">Order details</h2>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<tbody>
				<tr>
					<td style="padding: 12px; border-bottom: 1px solid #eee; color: #666;">Date</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right; font-weight: 600;">%s</td>
				</tr>
				<tr>
					<td style="padding: 12px; border-bottom: 1px solid #eee; color: #666;">Filling</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right; font-weight: 600;">%s</td>
				</tr>
				<tr>
					<td style="padding: 12px; border-bottom: 1px solid #eee; color: #666;">Bread</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right; font-weight: 600;">%s</td>
				</tr>
			</tbody>
		</table>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			This email was sent automatically. You can change or cancel your order until the day is closed for ordering.
		</p>
	</div>
</body>
</html>`, o.OrderID, o.Date, escape(o.FillingName), bread)
}

// BuildOrderCancelledBody builds the HTML body for the cancellation notice.
func BuildOrderCancelledBody(orderID, date, reason string) string {
	if reason == "" {
		reason = "no reason given"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #f8f9fa; padding: 30px; border-radius: 10px;">
		<h1 style="margin: 0 0 20px 0; font-size: 22px;">Order cancelled</h1>
		<p>Your lunch order <span style="font-family: monospace; font-weight: bold;">%s</span> for %s has been cancelled (%s).</p>
		<p style="font-size: 12px; color: #999; margin-bottom: 0;">This email was sent automatically.</p>
	</div>
</body>
</html>`, orderID, date, escape(reason))
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
