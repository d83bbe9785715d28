package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wyfcoding/ecommerce/internal/sales/domain"
)

type stubValidator struct {
	result domain.ValidationResult
	err    error
	items  []domain.LineItem
}

func (v *stubValidator) Validate(ctx context.Context, items []domain.LineItem) (domain.ValidationResult, error) {
	v.items = items
	return v.result, v.err
}

type stubPublisher struct {
	err    error
	events []domain.OrderConfirmedEvent
}

func (p *stubPublisher) PublishOrderConfirmed(ctx context.Context, event domain.OrderConfirmedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func TestPlaceOrderEmpty(t *testing.T) {
	validator := &stubValidator{}
	publisher := &stubPublisher{}
	svc := NewOrderService(validator, publisher)

	_, err := svc.PlaceOrder(context.Background(), nil)
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("err = %v, want ErrEmptyOrder", err)
	}
	if validator.items != nil {
		t.Error("validator should not be called for an empty order")
	}
	if len(publisher.events) != 0 {
		t.Error("no event should be published for an empty order")
	}
}

func TestPlaceOrderValidatorFailure(t *testing.T) {
	validator := &stubValidator{err: errors.New("connection refused")}
	publisher := &stubPublisher{}
	svc := NewOrderService(validator, publisher)

	_, err := svc.PlaceOrder(context.Background(), []domain.LineItem{{SKU: "SKU-1", Qty: 1}})
	if !errors.Is(err, ErrInventoryUnavailable) {
		t.Fatalf("err = %v, want ErrInventoryUnavailable", err)
	}
	if len(publisher.events) != 0 {
		t.Error("no event should be published when validation fails upstream")
	}
}

func TestPlaceOrderUnavailable(t *testing.T) {
	validator := &stubValidator{
		result: domain.ValidationResult{IsAvailable: false, Unavailable: []string{"SKU-2", "SKU-5"}},
	}
	publisher := &stubPublisher{}
	svc := NewOrderService(validator, publisher)

	_, err := svc.PlaceOrder(context.Background(), []domain.LineItem{
		{SKU: "SKU-2", Qty: 3},
		{SKU: "SKU-5", Qty: 1},
	})

	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want *UnavailableError", err)
	}
	if len(unavailable.Unavailable) != 2 || unavailable.Unavailable[0] != "SKU-2" || unavailable.Unavailable[1] != "SKU-5" {
		t.Errorf("Unavailable = %v", unavailable.Unavailable)
	}
	if !strings.Contains(unavailable.Error(), "SKU-2") {
		t.Errorf("error message should list the skus, got %q", unavailable.Error())
	}
	if len(publisher.events) != 0 {
		t.Error("no event should be published for a rejected order")
	}
}

func TestPlaceOrderPublishFailure(t *testing.T) {
	validator := &stubValidator{result: domain.ValidationResult{IsAvailable: true}}
	publisher := &stubPublisher{err: errors.New("channel closed")}
	svc := NewOrderService(validator, publisher)

	_, err := svc.PlaceOrder(context.Background(), []domain.LineItem{{SKU: "SKU-1", Qty: 1}})
	if !errors.Is(err, ErrEventPublish) {
		t.Fatalf("err = %v, want ErrEventPublish", err)
	}
	if errors.Is(err, ErrInventoryUnavailable) {
		t.Error("publish failure must not be reported as a validation failure")
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	validator := &stubValidator{result: domain.ValidationResult{IsAvailable: true}}
	publisher := &stubPublisher{}
	svc := NewOrderService(validator, publisher)

	items := []domain.LineItem{{SKU: "SKU-1", Qty: 3}, {SKU: "SKU-2", Qty: 1}}
	confirmation, err := svc.PlaceOrder(context.Background(), items)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if confirmation.Status != domain.OrderStatusConfirmed {
		t.Errorf("Status = %q, want %q", confirmation.Status, domain.OrderStatusConfirmed)
	}
	if !strings.HasPrefix(confirmation.OrderNumber, "ORD-") {
		t.Errorf("OrderNumber = %q, want ORD- prefix", confirmation.OrderNumber)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(publisher.events))
	}
	event := publisher.events[0]
	if event.OrderNumber != confirmation.OrderNumber {
		t.Errorf("event order number %q does not match confirmation %q", event.OrderNumber, confirmation.OrderNumber)
	}
	if event.OrderID == "" {
		t.Error("event OrderID should not be empty")
	}
	if len(event.Items) != 2 || event.Items[0] != items[0] || event.Items[1] != items[1] {
		t.Errorf("event items = %v, want %v", event.Items, items)
	}
}
