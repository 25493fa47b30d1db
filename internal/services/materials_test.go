package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tintura-sst/internal/models"
	"tintura-sst/internal/services"
	"tintura-sst/internal/store"
)

func newRequest(t *testing.T, fx *fixture, qty int) *models.MaterialRequest {
	t.Helper()
	m, err := fx.materials.Create(context.Background(), ord2, "Elastic band", qty, "")
	require.NoError(t, err)
	return m
}

func TestMaterialService_Create(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	m := newRequest(t, fx, 100)
	assert.Equal(t, models.MaterialPending, m.Status)
	assert.Equal(t, 0, m.QuantityApproved)

	_, err := fx.materials.Create(ctx, ord2, "Elastic", 0, "")
	assert.True(t, services.IsValidation(err))
	_, err = fx.materials.Create(ctx, ord2, " ", 5, "")
	assert.True(t, services.IsValidation(err))
	_, err = fx.materials.Create(ctx, uuid.New(), "Elastic", 5, "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMaterialService_ApprovalSequence(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	m := newRequest(t, fx, 100)

	res, err := fx.materials.Approve(ctx, m.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, res.Request.QuantityApproved)
	assert.Equal(t, models.MaterialPartiallyApproved, res.Request.Status)
	assert.Equal(t, 40, res.Receipt.Total)
	assert.Equal(t, "ORD-2", res.Receipt.Reference)

	_, err = fx.materials.Approve(ctx, m.ID, 61)
	assert.True(t, services.IsValidation(err))

	res, err = fx.materials.Approve(ctx, m.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Request.QuantityApproved)
	assert.Equal(t, models.MaterialApproved, res.Request.Status)
	assert.Equal(t, 60, res.Receipt.Lines[0].Quantity)

	_, err = fx.materials.Approve(ctx, m.ID, 1)
	assert.True(t, services.IsValidation(err))
	_, err = fx.materials.Approve(ctx, m.ID, 0)
	assert.True(t, services.IsValidation(err))
}

func TestMaterialService_ZeroApprovalRejects(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	m := newRequest(t, fx, 100)

	res, err := fx.materials.Approve(ctx, m.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.MaterialRejected, res.Request.Status)
	assert.Equal(t, 0, res.Request.QuantityApproved)

	_, err = fx.materials.Approve(ctx, m.ID, 0)
	assert.True(t, services.IsValidation(err))

	_, err = fx.materials.Approve(ctx, m.ID, -5)
	assert.True(t, services.IsValidation(err))
}

func TestMaterialService_ApprovedNeverExceedsRequested(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	m := newRequest(t, fx, 50)

	for _, qty := range []int{7, 30, 20, 13, 1, 9} {
		_, _ = fx.materials.Approve(ctx, m.ID, qty)
		reqs, err := fx.materials.List(ctx, &ord2, "")
		require.NoError(t, err)
		for _, r := range reqs {
			assert.LessOrEqual(t, r.QuantityApproved, r.QuantityRequested)
		}
	}
	final, err := fx.store.GetMaterialRequest(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, final.QuantityApproved)
	assert.Equal(t, models.MaterialApproved, final.Status)
}

func TestMaterialService_ListByStatus(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	pending, err := fx.materials.List(ctx, nil, models.MaterialPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = fx.materials.List(ctx, nil, "UNKNOWN")
	assert.True(t, services.IsValidation(err))
}
