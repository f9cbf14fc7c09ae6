package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Interaction types.
const (
	InteractionMeeting = "Meeting"
	InteractionCall    = "Call"
	InteractionEmail   = "Email"
)

// InteractionTypes lists the accepted values of Interaction.Type.
var InteractionTypes = []string{InteractionMeeting, InteractionCall, InteractionEmail}

// Interaction is a logged contact event. CustomerID is the required back
// reference to the owning Customer.
type Interaction struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Type        string        `bson:"type" json:"type"`
	Date        time.Time     `bson:"date" json:"date"`
	Time        string        `bson:"time,omitempty" json:"time,omitempty"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	CustomerID  bson.ObjectID `bson:"customer" json:"customer"`
}

// InteractionDetail is an interaction with its customer resolved. Customer
// is nil when the owning customer has been deleted.
type InteractionDetail struct {
	Interaction
	Customer *Customer `json:"customer"`
}

// InteractionInput is the body of POST and PUT /interactions. CustomerID is
// only read on create.
type InteractionInput struct {
	Type        *string `json:"type"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Description *string `json:"description"`
	CustomerID  *string `json:"customerId"`
}

// InteractionPatch is the persisted form of an interaction update.
type InteractionPatch struct {
	Type        *string
	Date        *time.Time
	Time        *string
	Description *string
}

// InteractionFilter holds the optional equality filters of the list call.
type InteractionFilter struct {
	Type     string
	Customer *bson.ObjectID
}
