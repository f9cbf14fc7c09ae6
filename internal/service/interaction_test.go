package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/crm-service/internal/model"
)

func TestInteractionCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.interactionSvc.Create(ctx, model.InteractionInput{CustomerID: ptr(bson.NewObjectID().Hex())})
	requireKind(t, err, KindValidation, "Please add a type")

	_, err = f.interactionSvc.Create(ctx, model.InteractionInput{Type: ptr(model.InteractionCall)})
	requireKind(t, err, KindValidation, "Please add a customer")

	_, err = f.interactionSvc.Create(ctx, model.InteractionInput{Type: ptr("Fax"), CustomerID: ptr(bson.NewObjectID().Hex())})
	requireKind(t, err, KindValidation, "Interaction type must be one of Meeting, Call, Email")

	_, err = f.interactionSvc.Create(ctx, model.InteractionInput{Type: ptr(model.InteractionCall), CustomerID: ptr(bson.NewObjectID().Hex())})
	requireKind(t, err, KindNotFound, "Customer not found")
	all, err := f.interactions.List(ctx, model.InteractionFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInteractionCreateLinksCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	fixed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	f.interactionSvc.now = func() time.Time { return fixed }

	c, err := f.customerSvc.Create(ctx, model.CustomerInput{Name: ptr("Acme")})
	require.NoError(t, err)

	i, err := f.interactionSvc.Create(ctx, model.InteractionInput{
		Type:        ptr(model.InteractionMeeting),
		Description: ptr("kickoff"),
		CustomerID:  ptr(c.ID.Hex()),
	})
	require.NoError(t, err)
	assert.Equal(t, c.ID, i.CustomerID)
	assert.Equal(t, fixed, i.Date)

	stored, err := f.customers.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []bson.ObjectID{i.ID}, stored.Interactions)
	assert.Equal(t, []string{"customer.created", "interaction.created"}, f.pub.Types())
	assert.Equal(t, []string{c.ID.Hex()}, f.pub.Events[1].RelatedIDs)
}

func TestInteractionCreateUsesGivenDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c, err := f.customerSvc.Create(ctx, model.CustomerInput{Name: ptr("Acme")})
	require.NoError(t, err)

	i, err := f.interactionSvc.Create(ctx, model.InteractionInput{
		Type:       ptr(model.InteractionCall),
		Date:       ptr("2023-12-24"),
		CustomerID: ptr(c.ID.Hex()),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC), i.Date)
}

func TestInteractionListFiltersAndResolves(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a, err := f.customerSvc.Create(ctx, model.CustomerInput{Name: ptr("A")})
	require.NoError(t, err)
	b, err := f.customerSvc.Create(ctx, model.CustomerInput{Name: ptr("B")})
	require.NoError(t, err)
	for _, in := range []model.InteractionInput{
		{Type: ptr(model.InteractionCall), CustomerID: ptr(a.ID.Hex())},
		{Type: ptr(model.InteractionEmail), CustomerID: ptr(a.ID.Hex())},
		{Type: ptr(model.InteractionCall), CustomerID: ptr(b.ID.Hex())},
	} {
		_, err := f.interactionSvc.Create(ctx, in)
		require.NoError(t, err)
	}

	calls, err := f.interactionSvc.List(ctx, model.InteractionFilter{Type: model.InteractionCall})
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "A", calls[0].Customer.Name)
	assert.Equal(t, "B", calls[1].Customer.Name)

	forA, err := f.interactionSvc.List(ctx, model.InteractionFilter{Customer: &a.ID})
	require.NoError(t, err)
	assert.Len(t, forA, 2)
}

func TestInteractionUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c, err := f.customerSvc.Create(ctx, model.CustomerInput{Name: ptr("Acme")})
	require.NoError(t, err)
	i, err := f.interactionSvc.Create(ctx, model.InteractionInput{Type: ptr(model.InteractionCall), CustomerID: ptr(c.ID.Hex())})
	require.NoError(t, err)

	got, err := f.interactionSvc.Update(ctx, i.ID.Hex(), model.InteractionInput{
		Type:        ptr(model.InteractionEmail),
		Description: ptr("follow-up"),
		CustomerID:  ptr(bson.NewObjectID().Hex()),
	})
	require.NoError(t, err)
	assert.Equal(t, model.InteractionEmail, got.Type)
	assert.Equal(t, "follow-up", got.Description)
	assert.Equal(t, c.ID, got.CustomerID)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "Acme", got.Customer.Name)

	_, err = f.interactionSvc.Update(ctx, i.ID.Hex(), model.InteractionInput{Type: ptr("Letter")})
	requireKind(t, err, KindValidation, "Interaction type must be one of Meeting, Call, Email")

	_, err = f.interactionSvc.Update(ctx, bson.NewObjectID().Hex(), model.InteractionInput{})
	requireKind(t, err, KindNotFound, "Interaction not found")
}

func TestInteractionDeleteLeavesCustomerReference(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c, err := f.customerSvc.Create(ctx, model.CustomerInput{Name: ptr("Acme")})
	require.NoError(t, err)
	i, err := f.interactionSvc.Create(ctx, model.InteractionInput{Type: ptr(model.InteractionCall), CustomerID: ptr(c.ID.Hex())})
	require.NoError(t, err)

	require.NoError(t, f.interactionSvc.Delete(ctx, i.ID.Hex()))

	_, err = f.interactionSvc.GetByID(ctx, i.ID.Hex())
	requireKind(t, err, KindNotFound, "Interaction not found")

	stored, err := f.customers.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []bson.ObjectID{i.ID}, stored.Interactions)

	detail, err := f.customerSvc.GetByID(ctx, c.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, detail.Interactions)
}
