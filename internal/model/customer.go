package model

import "go.mongodb.org/mongo-driver/v2/bson"

// Customer is a document in the `customers` collection. Interactions holds
// the ids of the Interaction documents that point back at this customer, in
// the order they were logged.
type Customer struct {
	ID           bson.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name         string          `bson:"name" json:"name"`
	ContactInfo  string          `bson:"contactInfo,omitempty" json:"contactInfo,omitempty"`
	Company      string          `bson:"company,omitempty" json:"company,omitempty"`
	Address      string          `bson:"address,omitempty" json:"address,omitempty"`
	Industry     string          `bson:"industry,omitempty" json:"industry,omitempty"`
	Notes        string          `bson:"notes,omitempty" json:"notes,omitempty"`
	Interactions []bson.ObjectID `bson:"interactions" json:"interactions"`
}

// CustomerSummary is the shape returned by create and update: the scalar
// fields without the interaction collection.
type CustomerSummary struct {
	ID          bson.ObjectID `json:"_id"`
	Name        string        `json:"name"`
	ContactInfo string        `json:"contactInfo,omitempty"`
	Company     string        `json:"company,omitempty"`
	Address     string        `json:"address,omitempty"`
	Industry    string        `json:"industry,omitempty"`
	Notes       string        `json:"notes,omitempty"`
}

// Summary drops the interaction collection.
func (c *Customer) Summary() CustomerSummary {
	return CustomerSummary{
		ID:          c.ID,
		Name:        c.Name,
		ContactInfo: c.ContactInfo,
		Company:     c.Company,
		Address:     c.Address,
		Industry:    c.Industry,
		Notes:       c.Notes,
	}
}

// CustomerDetail is a customer with its interaction ids resolved to the
// full records. Ids that no longer resolve are omitted.
type CustomerDetail struct {
	Customer
	Interactions []Interaction `json:"interactions"`
}

// CustomerInput carries the writable customer fields. On create Name is
// required; on update only the non-nil fields are applied.
type CustomerInput struct {
	Name        *string `json:"name"`
	ContactInfo *string `json:"contactInfo"`
	Company     *string `json:"company"`
	Address     *string `json:"address"`
	Industry    *string `json:"industry"`
	Notes       *string `json:"notes"`
}
