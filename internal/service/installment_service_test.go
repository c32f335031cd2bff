package service

import (
	"context"
	"testing"

	"github.com/healthdatalab/checkout-service/internal/kafka"
	"github.com/healthdatalab/checkout-service/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newInstallmentService(p *fakeProvider) *InstallmentService {
	return NewInstallmentService(p, kafka.NoopPublisher{}, zap.NewNop())
}

func TestHandlePaidInvoiceNoSubscription(t *testing.T) {
	svc := newInstallmentService(&fakeProvider{})

	outcome, err := svc.HandlePaidInvoice(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, OutcomeNoSubscription, outcome)
}

func TestHandlePaidInvoiceWithoutCapIsNoop(t *testing.T) {
	fake := &fakeProvider{
		sub: &provider.Subscription{ID: "sub_1", Status: "active", Metadata: map[string]string{}},
	}
	svc := newInstallmentService(fake)

	outcome, err := svc.HandlePaidInvoice(context.Background(), "sub_1")

	require.NoError(t, err)
	assert.Equal(t, OutcomeNotInstallment, outcome)
	assert.Zero(t, fake.cancelCalls)
}

func TestHandlePaidInvoiceGarbageCapIsNoop(t *testing.T) {
	fake := &fakeProvider{
		sub: &provider.Subscription{
			ID:       "sub_1",
			Status:   "active",
			Metadata: map[string]string{"installments": "not-a-number"},
		},
	}
	svc := newInstallmentService(fake)

	outcome, err := svc.HandlePaidInvoice(context.Background(), "sub_1")

	require.NoError(t, err)
	assert.Equal(t, OutcomeNotInstallment, outcome)
}

func TestHandlePaidInvoiceBelowCapStaysActive(t *testing.T) {
	fake := &fakeProvider{
		sub: &provider.Subscription{
			ID:       "sub_1",
			Status:   "active",
			Metadata: map[string]string{"installments": "3"},
		},
		invoices: []provider.Invoice{
			{ID: "in_1", AmountPaid: 34700},
			{ID: "in_2", AmountPaid: 34700},
		},
	}
	svc := newInstallmentService(fake)

	outcome, err := svc.HandlePaidInvoice(context.Background(), "sub_1")

	require.NoError(t, err)
	assert.Equal(t, OutcomeActive, outcome)
	assert.Zero(t, fake.cancelCalls)
}

func TestHandlePaidInvoiceCancelsAtCap(t *testing.T) {
	// cap=3: два ранее оплаченных инвойса плюс свежий - лимит достигнут
	fake := &fakeProvider{
		sub: &provider.Subscription{
			ID:       "sub_1",
			Status:   "active",
			Metadata: map[string]string{"installments": "3"},
		},
		invoices: []provider.Invoice{
			{ID: "in_1", AmountPaid: 34700},
			{ID: "in_2", AmountPaid: 34700},
			{ID: "in_3", AmountPaid: 34700},
		},
	}
	events := &recordingPublisher{}
	svc := NewInstallmentService(fake, events, zap.NewNop())

	outcome, err := svc.HandlePaidInvoice(context.Background(), "sub_1")

	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, outcome)
	assert.Equal(t, 1, fake.cancelCalls)
	assert.Equal(t, []string{kafka.TopicInstallmentsCompleted}, events.topics)
}

func TestHandlePaidInvoiceExcludesZeroValueTrialInvoices(t *testing.T) {
	fake := &fakeProvider{
		sub: &provider.Subscription{
			ID:       "sub_1",
			Status:   "active",
			Metadata: map[string]string{"installments": "2"},
		},
		invoices: []provider.Invoice{
			{ID: "in_trial", AmountPaid: 0},
			{ID: "in_1", AmountPaid: 1900},
		},
	}
	svc := newInstallmentService(fake)

	outcome, err := svc.HandlePaidInvoice(context.Background(), "sub_1")

	require.NoError(t, err)
	assert.Equal(t, OutcomeActive, outcome)
	assert.Zero(t, fake.cancelCalls)
}

func TestHandlePaidInvoiceRedeliveryIsIdempotent(t *testing.T) {
	fake := &fakeProvider{
		sub: &provider.Subscription{
			ID:       "sub_1",
			Status:   "active",
			Metadata: map[string]string{"installments": "2"},
		},
		invoices: []provider.Invoice{
			{ID: "in_1", AmountPaid: 34700},
			{ID: "in_2", AmountPaid: 34700},
		},
	}
	svc := newInstallmentService(fake)

	outcome, err := svc.HandlePaidInvoice(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, outcome)

	// Повторная доставка того же уведомления: подписка уже отменена,
	// повторной отмены и ошибки быть не должно
	outcome, err = svc.HandlePaidInvoice(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyCancelled, outcome)
	assert.Equal(t, 1, fake.cancelCalls)
}
