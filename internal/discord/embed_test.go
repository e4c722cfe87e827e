package discord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulogstudios/review-bot/internal/domain"
	"github.com/ulogstudios/review-bot/internal/service"
)

var testStyle = Style{
	ColorPrimary: 5793266,
	ColorError:   15548997,
	EmojiStar:    "⭐",
	FooterText:   "ULOG Studios",
}

var testReviewer = domain.Reviewer{
	ID:        "user-42",
	Username:  "blockfan",
	AvatarURL: "https://cdn.example.com/a.png",
}

func TestStars(t *testing.T) {
	b := NewEmbedBuilder(testStyle)

	assert.Equal(t, "⭐", b.Stars(1))
	assert.Equal(t, "⭐⭐⭐⭐⭐", b.Stars(5))
}

func TestErrorEmbed(t *testing.T) {
	b := NewEmbedBuilder(testStyle)

	embed := b.Error(testReviewer, "Session expired.", "Start over.")

	assert.Equal(t, testStyle.ColorError, embed.Color)
	assert.Equal(t, "Session expired.", embed.Title)
	assert.Equal(t, "blockfan", embed.Author.Name)
	assert.Equal(t, "ULOG Studios", embed.Footer.Text)
}

func TestPaymentSummaryEmbed(t *testing.T) {
	b := NewEmbedBuilder(testStyle)

	embed := b.PaymentSummary(testReviewer, &service.ProductSummary{
		ProductName:  "VIP Rank",
		ProductImage: "https://cdn.example.com/vip.png",
		Amount:       "9.99",
		Currency:     "$",
		Date:         time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, testStyle.ColorPrimary, embed.Color)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "VIP Rank", embed.Fields[0].Value)
	assert.Equal(t, "$ 9.99", embed.Fields[1].Value)
	assert.Equal(t, "2025-05-20", embed.Fields[2].Value)
	require.NotNil(t, embed.Image)
	assert.Equal(t, "https://cdn.example.com/vip.png", embed.Image.URL)
}

func TestPaymentSummaryEmbedUnknownDate(t *testing.T) {
	b := NewEmbedBuilder(testStyle)

	embed := b.PaymentSummary(testReviewer, &service.ProductSummary{ProductName: "VIP Rank"})

	assert.Equal(t, "Unknown", embed.Fields[2].Value)
	assert.Nil(t, embed.Image)
}

func TestReviewEmbed(t *testing.T) {
	b := NewEmbedBuilder(testStyle)

	embed := b.Review(&domain.Review{
		UserUsername: "blockfan",
		UserAvatar:   "https://cdn.example.com/a.png",
		ProductName:  "VIP Rank",
		ProductImage: "https://cdn.example.com/vip.png",
		ReviewText:   "Great perks, instant delivery!",
		Rating:       4,
	})

	assert.Equal(t, testStyle.ColorPrimary, embed.Color)
	assert.Contains(t, embed.Description, "Great perks, instant delivery!")
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "⭐⭐⭐⭐ (4/5)", embed.Fields[1].Value)
	require.NotNil(t, embed.Thumbnail)
	assert.Equal(t, "https://cdn.example.com/a.png", embed.Thumbnail.URL)
}
