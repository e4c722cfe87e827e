package discord

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/ulogstudios/review-bot/internal/domain"
	"github.com/ulogstudios/review-bot/internal/service"
)

// Custom ids for the interactive surfaces. These are round-tripped through
// Discord, so handlers dispatch on them.
const (
	commandReview        = "review"
	modalTransactionID   = "transaction_id_modal"
	modalReviewContent   = "review_content_modal"
	selectOpenReview     = "open_review_modal"
	fieldTransactionID   = "transaction_id"
	fieldProductName     = "product_name"
	fieldReviewText      = "review_description"
	fieldRating          = "rating"
	selectValueSubmitNow = "submit_review"
)

// NewSession creates a Discord gateway session. Slash commands and modals
// need no privileged intents, only the guild baseline.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	return s, nil
}

// Bot owns the gateway connection and routes interactions to the review
// workflow.
type Bot struct {
	session *discordgo.Session
	svc     *service.ReviewService
	embeds  *EmbedBuilder
	guildID string
	logger  *slog.Logger
}

// NewBot wires the interaction handlers onto the session.
func NewBot(session *discordgo.Session, svc *service.ReviewService, embeds *EmbedBuilder, guildID string, logger *slog.Logger) *Bot {
	b := &Bot{
		session: session,
		svc:     svc,
		embeds:  embeds,
		guildID: guildID,
		logger:  logger,
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	return b
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

// onReady registers the guild-scoped slash command. Guild registration
// propagates immediately, unlike global commands.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        commandReview,
			Description: "Leave a review for a store purchase",
		},
	}

	if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, b.guildID, commands); err != nil {
		b.logger.Error("failed to register slash commands",
			slog.String("guild_id", b.guildID),
			slog.String("error", err.Error()),
		)
		return
	}

	b.logger.Info("discord bot ready",
		slog.String("username", r.User.Username),
		slog.String("guild_id", b.guildID),
	)
}

// interactionUser returns the invoking user for guild and DM interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func reviewerFrom(i *discordgo.InteractionCreate) domain.Reviewer {
	u := interactionUser(i)
	if u == nil {
		return domain.Reviewer{}
	}
	return domain.Reviewer{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL("256"),
	}
}
