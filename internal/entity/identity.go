package entity

import "github.com/google/uuid"

const AnonymousName = "Anonymous"

// Identity is who a connection speaks for. The zero UserId means anonymous.
type Identity struct {
	UserId   uuid.UUID
	Username string
}

func AnonymousIdentity() Identity {
	return Identity{Username: AnonymousName}
}

func (i Identity) IsAnonymous() bool {
	return i.UserId == uuid.Nil
}
