package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Recognized message kinds. Status messages are engine-generated join and
// leave notices; clients may only send the other two.
const (
	MessageKindPublic  = "message"
	MessageKindPrivate = "private_message"
	MessageKindStatus  = "status"
)

// Message is a single entry in the room's message log. ID and From are
// immutable after creation; only the original sender may edit or delete.
type Message struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	From string             `bson:"from" json:"from"`
	To   string             `bson:"to" json:"to"`
	Text string             `bson:"text" json:"text"`
	Kind string             `bson:"kind" json:"kind"`
	Time string             `bson:"time" json:"time"`
}

// MessageRequest is the payload for creating or editing a message. The
// sender is not part of the body; it rides in the User header.
type MessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Kind string `json:"kind"`
}
