package orders

import (
	"context"
	"fmt"
)

// Confirmer asks the operator to approve a state-changing action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Approved returns a Confirmer with a fixed answer.
func Approved(ok bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) { return ok, nil })
}

// Actions validates input and obtains confirmation before delegating accept and
// cancel calls to a Service. Nothing is sent when validation or confirmation fails.
type Actions struct {
	svc     Service
	confirm Confirmer
}

// NewActions wraps svc. A nil confirmer approves every action.
func NewActions(svc Service, confirm Confirmer) *Actions {
	if confirm == nil {
		confirm = Approved(true)
	}
	return &Actions{svc: svc, confirm: confirm}
}

// Accept confirms and accepts an order.
func (a *Actions) Accept(ctx context.Context, token string, orderID int64) (ActionResult, error) {
	if orderID <= 0 {
		return ActionResult{}, ErrInvalidOrderID
	}
	if err := a.ask(ctx, AcceptConfirm); err != nil {
		return ActionResult{}, err
	}
	return a.svc.Accept(ctx, token, orderID)
}

// Cancel validates the reason, confirms and cancels an order.
func (a *Actions) Cancel(ctx context.Context, token string, orderID int64, reason string) (ActionResult, error) {
	if orderID <= 0 {
		return ActionResult{}, ErrInvalidOrderID
	}
	cleaned, err := NormalizeReason(reason)
	if err != nil {
		return ActionResult{}, err
	}
	if err := a.ask(ctx, CancelConfirm); err != nil {
		return ActionResult{}, err
	}
	return a.svc.Cancel(ctx, token, orderID, cleaned)
}

// UpdateStatus confirms and forces a status change.
func (a *Actions) UpdateStatus(ctx context.Context, token string, orderID int64, status Status) (ActionResult, error) {
	if orderID <= 0 {
		return ActionResult{}, ErrInvalidOrderID
	}
	if err := a.ask(ctx, fmt.Sprintf("Cập nhật đơn hàng #%d sang %q?", orderID, status.Display())); err != nil {
		return ActionResult{}, err
	}
	return a.svc.UpdateStatus(ctx, token, orderID, status)
}

func (a *Actions) ask(ctx context.Context, prompt string) error {
	ok, err := a.confirm.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Errorf("orders: confirm: %w", err)
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}
