package domain

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// WriteReceipt renders a plain-text receipt listing original and discounted
// prices per line.
func WriteReceipt(w io.Writer, o Order, currency string, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s\n", o.Number)
	fmt.Fprintf(&b, "Placed %s\n", o.CreatedAt.In(loc).Format("02 Jan 2006 15:04"))
	fmt.Fprintf(&b, "Status %s\n", o.Status)
	fmt.Fprintf(&b, "Bill to %s, %s\n%s\n\n", o.Billing.Name, o.Billing.Mobile, o.Billing.Address)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Item\tQty\tPrice\tDiscounted\tTotal\t")
	for _, l := range o.Lines {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t\n",
			l.Name, l.Quantity, l.UnitPrice.StringFixed(2), l.UnitDiscounted.StringFixed(2), l.LineDiscounted.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(&b, "\nSubtotal %s %s\n", currency, o.Subtotal.StringFixed(2))
	if s := o.Savings(); s.IsPositive() {
		fmt.Fprintf(&b, "You saved %s %s\n", currency, s.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total %s %s\n", currency, o.DiscountedTotal.StringFixed(2))

	_, err := io.WriteString(w, b.String())
	return err
}
