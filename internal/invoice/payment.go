package invoice

import (
	"context"
	"fmt"

	"smartinvoice/internal/domain"
)

// CommitFunc persists a paid invoice to history.
type CommitFunc func(ctx context.Context, inv *domain.InvoiceData) error

// PaymentFlow is the simulated payment state machine:
//
//	drafting --Submit--> awaiting_payment --Confirm--> paid
//	                     awaiting_payment --Cancel---> drafting
type PaymentFlow struct {
	state domain.PaymentState
}

// NewPaymentFlow starts a flow consistent with the invoice's paid flag.
func NewPaymentFlow(isPaid bool) *PaymentFlow {
	f := &PaymentFlow{state: domain.PaymentDrafting}
	f.Sync(isPaid)
	return f
}

// State returns the current state.
func (f *PaymentFlow) State() domain.PaymentState {
	return f.state
}

// Submit moves a draft to awaiting payment.
func (f *PaymentFlow) Submit() error {
	return f.transition(domain.PaymentDrafting, domain.PaymentAwaitingPayment)
}

// Cancel abandons an outstanding payment. The settled state then follows
// isPaid, which an edit made while awaiting payment may have flipped.
func (f *PaymentFlow) Cancel(isPaid bool) error {
	if err := f.transition(domain.PaymentAwaitingPayment, domain.PaymentDrafting); err != nil {
		return err
	}
	f.Sync(isPaid)
	return nil
}

// Confirm completes the payment: a paid copy of inv is committed first, and
// only on success is inv marked paid and the flow moved to paid. A commit
// error leaves both inv and the flow unchanged.
func (f *PaymentFlow) Confirm(ctx context.Context, inv *domain.InvoiceData, commit CommitFunc) error {
	if f.state != domain.PaymentAwaitingPayment {
		return fmt.Errorf("%w: cannot confirm from %s", domain.ErrInvalidPaymentTransition, f.state)
	}
	paid := inv.Clone()
	paid.IsPaid = true
	if err := commit(ctx, paid); err != nil {
		return err
	}
	inv.IsPaid = true
	f.state = domain.PaymentPaid
	return nil
}

// Sync realigns a settled flow with the invoice's paid flag after an edit
// that flips it (a smart-fill action, a history load). An outstanding
// payment is left alone.
func (f *PaymentFlow) Sync(isPaid bool) {
	if f.state == domain.PaymentAwaitingPayment {
		return
	}
	if isPaid {
		f.state = domain.PaymentPaid
	} else {
		f.state = domain.PaymentDrafting
	}
}

func (f *PaymentFlow) transition(from, to domain.PaymentState) error {
	if f.state != from {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidPaymentTransition, f.state, to)
	}
	f.state = to
	return nil
}
