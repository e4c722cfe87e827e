package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/ulogstudios/review-bot/internal/domain"
	"github.com/ulogstudios/review-bot/internal/service"
	apperrors "github.com/ulogstudios/review-bot/pkg/errors"
	"github.com/ulogstudios/review-bot/pkg/logger"
)

// onInteraction routes every gateway interaction. A panic in a handler is
// contained here so one bad interaction cannot take down the gateway loop.
func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := logger.WithCorrelationID(context.Background(), uuid.NewString())

	defer func() {
		if rec := recover(); rec != nil {
			b.logger.ErrorContext(ctx, "panic in interaction handler",
				slog.String("interaction_id", i.ID),
				slog.Any("panic", rec),
			)
			b.followupError(ctx, s, i, reviewerFrom(i),
				"Something went wrong.",
				"An unexpected error occurred. Please try again later.",
			)
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == commandReview {
			b.handleReviewCommand(ctx, s, i)
		}
	case discordgo.InteractionModalSubmit:
		switch i.ModalSubmitData().CustomID {
		case modalTransactionID:
			b.handleTransactionModal(ctx, s, i)
		case modalReviewContent:
			b.handleContentModal(ctx, s, i)
		}
	case discordgo.InteractionMessageComponent:
		if i.MessageComponentData().CustomID == selectOpenReview {
			b.handleProductSelect(ctx, s, i)
		}
	}
}

// handleReviewCommand opens the transaction-id modal.
func (b *Bot) handleReviewCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: modalTransactionID,
			Title:    "Submit a Review",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    fieldTransactionID,
						Label:       "Transaction / Payment ID",
						Style:       discordgo.TextInputShort,
						Placeholder: "tbx-12345678",
						Required:    true,
						MinLength:   domain.MinTransactionIDLength,
						MaxLength:   domain.MaxTransactionIDLength,
					},
				}},
			},
		},
	})
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to open transaction modal", slog.String("error", err.Error()))
	}
}

// handleTransactionModal verifies the transaction and shows the product
// confirmation with a select menu to proceed.
func (b *Bot) handleTransactionModal(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.deferEphemeral(ctx, s, i) {
		return
	}

	reviewer := reviewerFrom(i)
	transactionID := modalValue(i.ModalSubmitData(), fieldTransactionID)

	summary, err := b.svc.SubmitTransaction(ctx, reviewer, transactionID)
	if err != nil {
		b.editError(ctx, s, i, reviewer, err)
		return
	}

	embed := b.embeds.PaymentSummary(reviewer, summary)
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    selectOpenReview,
				Placeholder: "What would you like to do?",
				Options: []discordgo.SelectMenuOption{
					{
						Label:       "Submit Review",
						Value:       selectValueSubmitNow,
						Description: fmt.Sprintf("Write a review for %s", summary.ProductName),
						Emoji:       &discordgo.ComponentEmoji{Name: "📝"},
					},
				},
			},
		}},
	}

	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	})
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to show product confirmation", slog.String("error", err.Error()))
	}
}

// handleProductSelect advances the session and opens the content modal with
// the product name locked in.
func (b *Bot) handleProductSelect(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	reviewer := reviewerFrom(i)

	prompt, err := b.svc.ConfirmProduct(ctx, reviewer.ID)
	if err != nil {
		title, description := b.describeError(err)
		// Replace the confirmation message so the stale select menu is gone.
		respErr := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Embeds:     []*discordgo.MessageEmbed{b.embeds.Error(reviewer, title, description)},
				Components: []discordgo.MessageComponent{},
			},
		})
		if respErr != nil {
			b.logger.ErrorContext(ctx, "failed to report session error", slog.String("error", respErr.Error()))
		}
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: modalReviewContent,
			Title:    "Write Your Review",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  fieldProductName,
						Label:     "Product (do not change)",
						Style:     discordgo.TextInputShort,
						Value:     prompt.ProductName,
						Required:  true,
						MaxLength: 100,
					},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    fieldReviewText,
						Label:       "Your Review",
						Style:       discordgo.TextInputParagraph,
						Placeholder: "Tell us about your experience with this product",
						Required:    true,
						MinLength:   domain.MinReviewLength,
						MaxLength:   domain.MaxReviewLength,
					},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    fieldRating,
						Label:       "Rating (1-5)",
						Style:       discordgo.TextInputShort,
						Placeholder: "5",
						Required:    true,
						MinLength:   1,
						MaxLength:   1,
					},
				}},
			},
		},
	})
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to open review modal", slog.String("error", err.Error()))
	}
}

// handleContentModal completes the workflow and confirms to the user.
func (b *Bot) handleContentModal(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.deferEphemeral(ctx, s, i) {
		return
	}

	reviewer := reviewerFrom(i)
	data := i.ModalSubmitData()

	review, err := b.svc.SubmitReview(ctx, reviewer, service.SubmitReviewInput{
		ProductName: modalValue(data, fieldProductName),
		ReviewText:  modalValue(data, fieldReviewText),
		Rating:      modalValue(data, fieldRating),
	})
	if err != nil {
		b.editError(ctx, s, i, reviewer, err)
		return
	}

	embed := b.embeds.Success(reviewer,
		"Review submitted!",
		fmt.Sprintf("Thank you for reviewing **%s** %s", review.ProductName, b.embeds.Stars(review.Rating)),
	)
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to confirm review submission", slog.String("error", err.Error()))
	}
}

// deferEphemeral acknowledges the interaction so handlers get the full
// follow-up window instead of Discord's three-second response deadline.
func (b *Bot) deferEphemeral(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to defer interaction", slog.String("error", err.Error()))
		return false
	}
	return true
}

// describeError maps a workflow error to the user-facing embed copy.
func (b *Bot) describeError(err error) (title, description string) {
	switch apperrors.Code(err) {
	case "TRANSACTION_USED":
		return "Transaction ID already used.",
			"This Transaction ID has already been used for a review. Each purchase can only be reviewed once."
	case "TRANSACTION_NOT_FOUND":
		return "Transaction/Payment ID not found.",
			"We could not find a purchase with that ID. Double-check it, or contact an administrator if you believe this is an error."
	case "EMPTY_PURCHASE":
		return "No products found.",
			"This transaction does not contain any products to review."
	case "SESSION_EXPIRED":
		return "Session expired.",
			"Your review session has expired. Please run `/review` again to start over."
	case "INVALID_RATING":
		return "Invalid rating.",
			"Please enter a rating between 1 and 5."
	case "PRODUCT_MISMATCH":
		return "Invalid product name.",
			"The product name cannot be changed. Please run `/review` again."
	case "INVALID_INPUT":
		return "Invalid input.",
			"Please check your input and try again."
	case "UNAVAILABLE":
		return "Review channel unavailable.",
			"Your review could not be posted right now. Please try again in a moment."
	default:
		return "Something went wrong.",
			"An unexpected error occurred. Please try again later."
	}
}

// editError replaces a deferred response with an error embed.
func (b *Bot) editError(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, reviewer domain.Reviewer, err error) {
	b.logger.WarnContext(ctx, "review interaction rejected",
		slog.String("user_id", reviewer.ID),
		slog.String("code", apperrors.Code(err)),
		slog.String("error", err.Error()),
	)

	title, description := b.describeError(err)
	_, editErr := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{b.embeds.Error(reviewer, title, description)},
	})
	if editErr != nil {
		b.logger.ErrorContext(ctx, "failed to send error embed", slog.String("error", editErr.Error()))
	}
}

// followupError sends an ephemeral error regardless of the interaction's
// response state. Used by the panic guard, where that state is unknown.
func (b *Bot) followupError(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, reviewer domain.Reviewer, title, description string) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{b.embeds.Error(reviewer, title, description)},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to send followup error", slog.String("error", err.Error()))
	}
}

// modalValue extracts a text-input value from a modal submission.
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			input, ok := comp.(*discordgo.TextInput)
			if ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
