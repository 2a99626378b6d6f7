package cart

import (
	"testing"

	"littleshop/internal/domain/product"
)

func prod(id string, price float64) product.Product {
	return product.Product{ID: id, Name: "p-" + id, Price: price, Category: "Snacks"}
}

func TestAddTwiceMergesIntoOneLine(t *testing.T) {
	items := Add(nil, prod("1", 25.99))
	items = Add(items, prod("1", 25.99))

	if len(items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", items[0].Quantity)
	}
	if err := Validate(items); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

func TestAddPreservesInsertionOrder(t *testing.T) {
	items := Add(nil, prod("a", 1))
	items = Add(items, prod("b", 2))
	items = Add(items, prod("a", 1)) // increment keeps position

	if items[0].ProductID != "a" || items[1].ProductID != "b" {
		t.Fatalf("unexpected order: %+v", items)
	}
	if items[0].Quantity != 2 {
		t.Fatalf("expected a.qty=2, got %d", items[0].Quantity)
	}
}

func TestChangeQuantityToZeroRemovesLine(t *testing.T) {
	items := Add(nil, prod("1", 3.50))
	items = ChangeQuantity(items, "1", 2) // qty 3
	items = ChangeQuantity(items, "1", -3)

	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}
}

func TestChangeQuantityUnknownIDIsNoop(t *testing.T) {
	items := Add(nil, prod("1", 3.50))
	next := ChangeQuantity(items, "missing", -1)

	if len(next) != 1 || next[0].Quantity != 1 {
		t.Fatalf("expected unchanged cart, got %+v", next)
	}
}

func TestChangeQuantityLeavesOtherLinesAlone(t *testing.T) {
	items := Add(nil, prod("1", 1))
	items = Add(items, prod("2", 2))
	items = ChangeQuantity(items, "2", 3)

	if items[0].Quantity != 1 {
		t.Fatalf("line 1 changed: %+v", items)
	}
	if items[1].Quantity != 4 {
		t.Fatalf("expected line 2 qty=4, got %d", items[1].Quantity)
	}
}

func TestRemove(t *testing.T) {
	items := Add(nil, prod("1", 1))
	items = Add(items, prod("2", 2))

	items = Remove(items, "1")
	if len(items) != 1 || items[0].ProductID != "2" {
		t.Fatalf("unexpected items after remove: %+v", items)
	}

	// absent id -> no-op
	items = Remove(items, "missing")
	if len(items) != 1 {
		t.Fatalf("remove of absent id changed cart: %+v", items)
	}
}

func TestMutationsDoNotAliasInput(t *testing.T) {
	items := Add(nil, prod("1", 1))
	next := ChangeQuantity(items, "1", 5)

	if items[0].Quantity != 1 {
		t.Fatalf("input slice was mutated: %+v", items)
	}
	if next[0].Quantity != 6 {
		t.Fatalf("expected qty 6, got %d", next[0].Quantity)
	}
}

func TestTotals(t *testing.T) {
	items := []Item{
		{ProductID: "1", Price: 25.99, Quantity: 1},
		{ProductID: "2", Price: 3.50, Quantity: 2},
	}

	if got := TotalItems(items); got != 3 {
		t.Fatalf("TotalItems = %d, want 3", got)
	}
	if got := TotalPrice(items); got != 32.99 {
		t.Fatalf("TotalPrice = %v, want 32.99", got)
	}
}

func TestValidateRejectsDuplicatesAndBadQty(t *testing.T) {
	if err := Validate([]Item{{ProductID: "1", Quantity: 1}, {ProductID: "1", Quantity: 2}}); err == nil {
		t.Fatalf("expected duplicate product ids to be rejected")
	}
	if err := Validate([]Item{{ProductID: "1", Quantity: 0}}); err == nil {
		t.Fatalf("expected non-positive quantity to be rejected")
	}
	if err := Validate(nil); err != nil {
		t.Fatalf("empty cart should be valid: %v", err)
	}
}
