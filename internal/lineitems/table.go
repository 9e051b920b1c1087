package lineitems

import (
	"errors"
	"fmt"

	"kazzy/internal/models"
)

// ErrIncompleteRow is returned when a new row is requested while the last
// row has no product selected or a non-positive quantity. This is a UX
// guard; Canonical() filtering protects the persisted data regardless.
var ErrIncompleteRow = errors.New("previous row is incomplete")

// Table holds the ordered list of line items for the order being edited.
// Insertion order is presentation order; duplicate products are allowed.
type Table struct {
	rows []models.LineItem
}

func New(rows []models.LineItem) *Table {
	t := &Table{rows: append([]models.LineItem(nil), rows...)}
	for i := range t.rows {
		recompute(&t.rows[i])
	}
	return t
}

func recompute(li *models.LineItem) {
	li.LineTotal = float64(li.OrderQuantity) * li.SellingPrice
}

// Rows returns a copy of the current row list, totals recomputed.
func (t *Table) Rows() []models.LineItem {
	return append([]models.LineItem(nil), t.rows...)
}

// Len returns the number of rows, canonical or not.
func (t *Table) Len() int { return len(t.rows) }

// AddRow appends a blank row and returns its index. Adding is refused
// while the last row is still incomplete.
func (t *Table) AddRow() (int, error) {
	if n := len(t.rows); n > 0 && !t.rows[n-1].Canonical() {
		return -1, ErrIncompleteRow
	}
	t.rows = append(t.rows, models.LineItem{OrderQuantity: 1})
	return len(t.rows) - 1, nil
}

// SetProduct fills a row's product fields and seeds its prices from the
// catalog entry.
func (t *Table) SetProduct(i int, category, name string, sellingPrice, mrp float64) {
	if i < 0 || i >= len(t.rows) {
		return
	}
	t.rows[i].ProductCategory = category
	t.rows[i].ProductName = name
	t.rows[i].SellingPrice = sellingPrice
	t.rows[i].MRP = mrp
	recompute(&t.rows[i])
}

// SetQuantity updates a row's quantity and recomputes its total in the
// same turn.
func (t *Table) SetQuantity(i, quantity int) {
	if i < 0 || i >= len(t.rows) {
		return
	}
	t.rows[i].OrderQuantity = quantity
	recompute(&t.rows[i])
}

// SetPrice updates a row's selling price and recomputes its total.
func (t *Table) SetPrice(i int, price float64) {
	if i < 0 || i >= len(t.rows) {
		return
	}
	t.rows[i].SellingPrice = price
	recompute(&t.rows[i])
}

// DeleteRow removes the row at index i; subsequent indices shift down.
func (t *Table) DeleteRow(i int) {
	if i < 0 || i >= len(t.rows) {
		return
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
}

// CanonicalRows returns only the rows meeting the persistence invariant,
// with line totals recomputed. Applying it twice yields the same list.
func CanonicalRows(rows []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, 0, len(rows))
	for _, r := range rows {
		if !r.Canonical() {
			continue
		}
		recompute(&r)
		out = append(out, r)
	}
	return out
}

// GrandTotal sums line totals over canonical rows only.
func GrandTotal(rows []models.LineItem) float64 {
	total := 0.0
	for _, r := range CanonicalRows(rows) {
		total += r.LineTotal
	}
	return total
}

func (t *Table) GrandTotal() float64 { return GrandTotal(t.rows) }

// FormatTotal renders the grand-total label shown under the table.
func FormatTotal(total float64) string {
	return fmt.Sprintf("Total: ₹%.2f", total)
}
