package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/ulogstudios/review-bot/internal/domain"
)

// ChannelAnnouncer posts finished reviews to the public review channel.
type ChannelAnnouncer struct {
	session   *discordgo.Session
	channelID string
	embeds    *EmbedBuilder
}

// NewChannelAnnouncer creates an announcer bound to the given channel.
func NewChannelAnnouncer(session *discordgo.Session, channelID string, embeds *EmbedBuilder) *ChannelAnnouncer {
	return &ChannelAnnouncer{
		session:   session,
		channelID: channelID,
		embeds:    embeds,
	}
}

// PublishReview posts the review embed and returns the posted message id.
func (a *ChannelAnnouncer) PublishReview(ctx context.Context, review *domain.Review) (string, error) {
	msg, err := a.session.ChannelMessageSendEmbed(a.channelID, a.embeds.Review(review))
	if err != nil {
		return "", fmt.Errorf("post review to channel %s: %w", a.channelID, err)
	}
	return msg.ID, nil
}
