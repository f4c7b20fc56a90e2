package models

// Participant holds a single room member and the timestamp of their last
// sign of life, stored as Unix milliseconds. The name is the identity key:
// at most one participant per name exists at any time.
type Participant struct {
	Name         string `bson:"name" json:"name"`
	LastActivity int64  `bson:"lastActivity" json:"lastActivity"`
}

// JoinRequest is the payload for joining the room
type JoinRequest struct {
	Name string `json:"name"`
}
