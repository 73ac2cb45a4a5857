package cmd

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"time"

	"github.com/spf13/cobra"
)

// Sample types for the demo command

type Status int

const (
	StatusOpen Status = iota
	StatusPaid
	StatusShipped
)

func (s Status) String() string {
	return [...]string{"open", "paid", "shipped"}[s]
}

type audit struct {
	createdAt time.Time
	createdBy string
}

type Item struct {
	SKU      string
	Quantity int
	Price    float64
}

type Order struct {
	audit
	ID       int
	Status   Status
	Customer *Customer
	Items    []Item
	Tags     map[string]bool
	Notes    string `default:"none" json:"notes,omitempty"`
	lastErr  error
	discount float64
}

// Total sums the item prices
func (o *Order) Total() float64 {
	total := 0.0
	for _, it := range o.Items {
		total += float64(it.Quantity) * it.Price
	}
	return total * (1 - o.discount)
}

// GetItemCount returns the number of line items
func (o *Order) GetItemCount() int {
	return len(o.Items)
}

func (o *Order) Len() int          { return len(o.Items) }
func (o *Order) At(i int) Item     { return o.Items[i] }
func (o *Order) Err() error        { return o.lastErr }
func (o *Order) recalculate() bool { return o.discount > 0 }

type Customer struct {
	Name   string
	Orders []*Order
	extra  map[string]any
}

// All yields the customer's orders by id
func (c *Customer) All() iter.Seq2[int, *Order] {
	return func(yield func(int, *Order) bool) {
		for _, o := range c.Orders {
			if !yield(o.ID, o) {
				return
			}
		}
	}
}

// DynamicFields exposes values that are not struct fields
func (c *Customer) DynamicFields() map[string]any {
	return maps.Clone(c.extra)
}

func sampleData() *Customer {
	c := &Customer{Name: "Ada", extra: map[string]any{"tier": "gold"}}
	errPayment := errors.New("card declined")
	c.Orders = []*Order{
		{
			audit:    audit{createdAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), createdBy: "web"},
			ID:       1,
			Status:   StatusPaid,
			Customer: c,
			Items:    []Item{{SKU: "A-1", Quantity: 2, Price: 9.5}, {SKU: "B-7", Quantity: 1, Price: 30}},
			Tags:     map[string]bool{"gift": true},
			discount: 0.1,
		},
		{
			ID:       2,
			Status:   StatusOpen,
			Customer: c,
			lastErr:  fmt.Errorf("charge order 2: %w", errPayment),
		},
	}
	return c
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Dump a sample object graph with cycles, iterators and errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDumper(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		report := d.DumpAction(sampleData(), "customer", 0)
		if report == nil {
			return fmt.Errorf("dump refused, see the debug log")
		}
		return d.Render(report)
	},
}

var backtraceCmd = &cobra.Command{
	Use:   "backtrace",
	Short: "Render the backtrace of a nested call as a demo",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDumper(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		var renderErr error
		checkout(3, func() {
			report := d.BacktraceAction(nil)
			if report == nil {
				renderErr = fmt.Errorf("backtrace refused, see the debug log")
				return
			}
			renderErr = d.Render(report)
		})
		return renderErr
	},
}

// checkout recurses depth times before calling done
func checkout(depth int, done func()) {
	if depth == 0 {
		done()
		return
	}
	checkout(depth-1, done)
}

func init() {
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(backtraceCmd)
}
