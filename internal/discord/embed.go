package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ulogstudios/review-bot/internal/domain"
	"github.com/ulogstudios/review-bot/internal/service"
)

// Style holds the presentation options injected from configuration.
type Style struct {
	ColorPrimary int
	ColorError   int
	EmojiStar    string
	FooterText   string
}

// EmbedBuilder renders the bot's embeds with a consistent style.
type EmbedBuilder struct {
	style Style
}

// NewEmbedBuilder creates an embed builder with the given style.
func NewEmbedBuilder(style Style) *EmbedBuilder {
	return &EmbedBuilder{style: style}
}

// Stars renders a rating as repeated star glyphs.
func (b *EmbedBuilder) Stars(rating int) string {
	return strings.Repeat(b.style.EmojiStar, rating)
}

func (b *EmbedBuilder) footer() *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{Text: b.style.FooterText}
}

func author(reviewer domain.Reviewer) *discordgo.MessageEmbedAuthor {
	return &discordgo.MessageEmbedAuthor{
		Name:    reviewer.Username,
		IconURL: reviewer.AvatarURL,
	}
}

// Error renders an ephemeral error embed.
func (b *EmbedBuilder) Error(reviewer domain.Reviewer, title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Author:      author(reviewer),
		Title:       title,
		Description: description,
		Color:       b.style.ColorError,
		Footer:      b.footer(),
	}
}

// Success renders an ephemeral success embed.
func (b *EmbedBuilder) Success(reviewer domain.Reviewer, title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Author:      author(reviewer),
		Title:       title,
		Description: description,
		Color:       b.style.ColorPrimary,
		Footer:      b.footer(),
	}
}

// PaymentSummary renders the product confirmation surface shown after a
// transaction is verified.
func (b *EmbedBuilder) PaymentSummary(reviewer domain.Reviewer, summary *service.ProductSummary) *discordgo.MessageEmbed {
	date := "Unknown"
	if !summary.Date.IsZero() {
		date = summary.Date.Format("2006-01-02")
	}

	embed := &discordgo.MessageEmbed{
		Author: author(reviewer),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Product", Value: summary.ProductName, Inline: true},
			{Name: "Price", Value: fmt.Sprintf("%s %s", summary.Currency, summary.Amount), Inline: true},
			{Name: "Date", Value: date, Inline: true},
		},
		Color:  b.style.ColorPrimary,
		Footer: b.footer(),
	}

	if summary.ProductImage != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: summary.ProductImage}
	}

	return embed
}

// Review renders the public announcement embed.
func (b *EmbedBuilder) Review(review *domain.Review) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    review.UserUsername,
			IconURL: review.UserAvatar,
		},
		Description: fmt.Sprintf("**Review:** %s", review.ReviewText),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Product", Value: review.ProductName, Inline: true},
			{Name: "Rating", Value: fmt.Sprintf("%s (%d/5)", b.Stars(review.Rating), review.Rating), Inline: true},
		},
		Color:     b.style.ColorPrimary,
		Footer:    b.footer(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if review.UserAvatar != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: review.UserAvatar}
	}
	if review.ProductImage != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: review.ProductImage}
	}

	return embed
}
