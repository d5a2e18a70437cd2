package domain

import "github.com/google/uuid"

// Principal is the acting user for an operation. Every scoped operation
// takes an explicit Principal; nothing reads ambient session state.
type Principal struct {
	ID        uuid.UUID
	Superuser bool
}

// Elevated reports whether the principal is exempt from ownership
// scoping and sees every record.
func (p Principal) Elevated() bool {
	return p.Superuser
}

// OwnerRef returns the owner to stamp on records this principal creates.
func (p Principal) OwnerRef() *uuid.UUID {
	id := p.ID
	return &id
}

// Owns reports whether the principal may act on a record with the given
// owner. Unowned (system) records are reachable only by elevated
// principals, matching the owner-equality predicate used in queries.
func (p Principal) Owns(ownerID *uuid.UUID) bool {
	if p.Elevated() {
		return true
	}
	return ownerID != nil && *ownerID == p.ID
}
