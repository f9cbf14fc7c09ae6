package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestValidateCustomer(t *testing.T) {
	r := ValidateCustomer(CustomerInput{}, true)
	require.False(t, r.OK())
	assert.Equal(t, "Customer name is required", r.First().Message)

	r = ValidateCustomer(CustomerInput{Name: strp("  ")}, true)
	assert.False(t, r.OK())

	assert.True(t, ValidateCustomer(CustomerInput{Name: strp("Acme")}, true).OK())
	// partial update without a name is fine
	assert.True(t, ValidateCustomer(CustomerInput{Notes: strp("x")}, false).OK())
	assert.False(t, ValidateCustomer(CustomerInput{Name: strp("")}, false).OK())
}

func TestValidateInteraction(t *testing.T) {
	r := ValidateInteraction(InteractionInput{CustomerID: strp("65a000000000000000000001")}, true)
	require.False(t, r.OK())
	assert.Equal(t, "Please add a type", r.First().Message)

	r = ValidateInteraction(InteractionInput{Type: strp("Call")}, true)
	require.False(t, r.OK())
	assert.Equal(t, "Please add a customer", r.First().Message)

	r = ValidateInteraction(InteractionInput{Type: strp("Fax"), CustomerID: strp("65a000000000000000000001")}, true)
	require.False(t, r.OK())
	assert.Equal(t, "type", r.First().Field)

	r = ValidateInteraction(InteractionInput{Type: strp("Call"), CustomerID: strp("nope")}, true)
	require.False(t, r.OK())
	assert.Equal(t, "customerId", r.First().Field)

	r = ValidateInteraction(InteractionInput{Type: strp("Meeting"), CustomerID: strp("65a000000000000000000001"), Date: strp("2024-03-01")}, true)
	assert.True(t, r.OK())

	r = ValidateInteraction(InteractionInput{Date: strp("yesterday")}, false)
	require.False(t, r.OK())
	assert.Equal(t, "date", r.First().Field)
}

func TestValidateLead(t *testing.T) {
	r := ValidateLead(LeadInput{}, true)
	require.False(t, r.OK())
	assert.Equal(t, "Lead name is required", r.First().Message)

	r = ValidateLead(LeadInput{Name: strp("Bob"), Status: strp("Pending")}, true)
	require.False(t, r.OK())
	assert.Equal(t, "status", r.First().Field)

	r = ValidateLead(LeadInput{Name: strp("Bob"), Opportunities: &[]string{"65a000000000000000000001", "bad"}}, true)
	require.False(t, r.OK())
	assert.Equal(t, "opportunities", r.First().Field)

	r = ValidateLead(LeadInput{Name: strp("Bob"), Status: strp("Won"), ContactInfo: &ContactInfo{Email: "bob@example.com"}}, true)
	assert.True(t, r.OK())
}

func TestValidateOpportunity_RequiredOrder(t *testing.T) {
	v := 10.0
	r := ValidateOpportunity(OpportunityInput{Value: &v, Lead: strp("65a000000000000000000001")}, true)
	require.False(t, r.OK())
	assert.Equal(t, "Opportunity name is required", r.First().Message)

	r = ValidateOpportunity(OpportunityInput{Name: strp("Deal"), Lead: strp("65a000000000000000000001")}, true)
	require.False(t, r.OK())
	assert.Equal(t, "Opportunity value is required", r.First().Message)

	r = ValidateOpportunity(OpportunityInput{Name: strp("Deal"), Value: &v}, true)
	require.False(t, r.OK())
	assert.Equal(t, "Lead is required", r.First().Message)

	zero := 0.0
	r = ValidateOpportunity(OpportunityInput{Name: strp("Deal"), Value: &zero, Lead: strp("65a000000000000000000001")}, true)
	require.False(t, r.OK())
	assert.Equal(t, "Opportunity value is required", r.First().Message)

	// Only create treats zero as missing.
	r = ValidateOpportunity(OpportunityInput{Value: &zero}, false)
	assert.True(t, r.OK())

	r = ValidateOpportunity(OpportunityInput{Name: strp("Deal"), Value: &v, Lead: strp("65a000000000000000000001")}, true)
	assert.True(t, r.OK())

	r = ValidateOpportunity(OpportunityInput{Stage: strp("Won")}, false)
	require.False(t, r.OK())
	assert.Equal(t, "stage", r.First().Field)
}

func TestValidateUsers(t *testing.T) {
	r := ValidateRegister(RegisterInput{Email: "a@b.co", Password: "x"})
	require.False(t, r.OK())
	assert.Equal(t, "Please provide all values", r.First().Message)

	r = ValidateRegister(RegisterInput{Name: "A", Email: "not-an-email", Password: "x"})
	require.False(t, r.OK())
	assert.Equal(t, "Please provide a valid email", r.First().Message)

	// arbitrary role strings pass validation
	assert.True(t, ValidateRegister(RegisterInput{Name: "A", Email: "a@b.co", Password: "x", Role: "overlord"}).OK())

	r = ValidateLogin(LoginInput{Email: "a@b.co"})
	require.False(t, r.OK())
	assert.Equal(t, "Please provide email and password", r.First().Message)

	assert.False(t, ValidateProfile(ProfileInput{Name: "A", Email: "a@b.co"}).OK())
	assert.False(t, ValidateUser(UserInput{Email: strp("x")}).OK())
	assert.True(t, ValidateUser(UserInput{Role: strp("anything")}).OK())
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2024-05-06")
	require.True(t, ok)
	assert.Equal(t, 2024, d.Year())

	_, ok = ParseDate("2024-05-06T10:00:00Z")
	assert.True(t, ok)

	_, ok = ParseDate("06/05/2024")
	assert.False(t, ok)
}
