package realtime

import (
	"errors"

	"github.com/samber/lo"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/apperr"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/entity"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/logging"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/repository"
)

// Fanout is the one chokepoint through which a persisted message
// becomes a push. Both write paths, the REST handler and the inbound
// channel frame, converge here.
type Fanout struct {
	registry *Registry
	resolver *Resolver
	chats    repository.ChatRepository
	logger   logging.Logger
}

func NewFanout(registry *Registry, resolver *Resolver, chats repository.ChatRepository, logger logging.Logger) *Fanout {
	return &Fanout{
		registry: registry,
		resolver: resolver,
		chats:    chats,
		logger:   logger,
	}
}

// Publish pushes the message to every active member with a live
// channel. Fire and forget: unreachable members are skipped, partial
// delivery is not reported, and nothing is written to storage. The
// caller must have persisted the message already, so a persistence
// failure can never be preceded by a push.
//
// Safe for concurrent use; the registry is the only shared state.
func (f *Fanout) Publish(chatID string, message *entity.Message) {
	members, err := f.resolver.ActiveMembers(chatID)
	if err != nil {
		if errors.Is(err, apperr.ErrChatNotFound) {
			f.logger.Logf("publish for unknown chat %s, fanning out to nobody", chatID)
			return
		}
		f.logger.Logf("membership lookup failed for chat %s: %v", chatID, err)
		return
	}

	kind, err := f.chats.GetKind(chatID)
	if err != nil {
		f.logger.Logf("kind lookup failed for chat %s, keeping the author in the recipients: %v", chatID, err)
	}
	if err != nil || kind == entity.ChatKindGroup {
		// The author always hears their own group message, even if
		// their membership row is in an odd state mid-edit. When the
		// kind cannot be read the same cover applies.
		members = lo.Union(members, []string{message.AuthorID})
	}

	payload, err := encodeMessage(chatID, message)
	if err != nil {
		f.logger.Logf("could not encode message %s: %v", message.ID, err)
		return
	}

	sent := f.registry.BroadcastTo(members, payload)
	f.logger.Logf("message %s in chat %s pushed to %d/%d members", message.ID, chatID, sent, len(members))
}
