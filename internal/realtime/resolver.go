package realtime

import (
	"github.com/Igor-Gurskiy/UrbanConnect/internal/logging"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/repository"
)

// Resolver answers which users should receive events for a chat. Every
// call re-queries storage: no cache means a membership edit is visible
// to the very next fan-out.
type Resolver struct {
	memberships repository.MembershipRepository
	logger      logging.Logger
}

func NewResolver(memberships repository.MembershipRepository, logger logging.Logger) *Resolver {
	return &Resolver{
		memberships: memberships,
		logger:      logger,
	}
}

// ActiveMembers returns the ids of members who have not soft-left the
// chat. apperr.ErrChatNotFound when the chat does not exist; callers
// treat that as fan out to nobody.
func (r *Resolver) ActiveMembers(chatID string) ([]string, error) {
	return r.memberships.GetActiveMembers(chatID)
}

func (r *Resolver) IsMember(chatID, userID string) (bool, error) {
	return r.memberships.IsMember(chatID, userID)
}
