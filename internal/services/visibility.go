package services

import (
	"github.com/google/uuid"

	"github.com/sealbox/sealbox/internal/models"
)

// CanViewCapsule decides whether a viewer may read a capsule. It is the
// single authorization predicate for every capsule read path; no endpoint
// re-derives visibility with its own joins.
//
// Rules, first match wins:
//  1. the owner always sees their own capsule
//  2. anyone on the share list sees the capsule, whatever the share status;
//     a pending invite still confers read access, acceptance only gates
//     contribution actions
//  3. private capsules are visible to nobody else
//  4. friends capsules require an accepted friendship with the owner
//  5. public capsules also require friendship: "public" in this domain means
//     public to the owner's friend graph, not to all users
func CanViewCapsule(viewerID uuid.UUID, capsule *models.Capsule, shares []models.CapsuleShare, isFriend bool) bool {
	if capsule.UserID == viewerID {
		return true
	}
	for _, share := range shares {
		if share.UserID == viewerID {
			return true
		}
	}
	switch capsule.Privacy {
	case models.CapsulePrivacyFriends, models.CapsulePrivacyPublic:
		return isFriend
	default:
		// private, or an unknown privacy value
		return false
	}
}
