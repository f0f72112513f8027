package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"paperwatch/internal/paper"
)

const embedColor = 0xB31B1B // arXiv red

// Discord posts one embed per surfaced paper to a channel.
type Discord struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscord(token, channelID string) (*Discord, error) {
	if token == "" || channelID == "" {
		return nil, fmt.Errorf("discord notifier misconfigured: token and channel_id are required")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	return &Discord{
		session:   session,
		channelID: channelID,
	}, nil
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Notify(ctx context.Context, papers []paper.Enriched) error {
	for _, p := range papers {
		if err := ctx.Err(); err != nil {
			return err
		}

		embed := buildEmbed(p)
		if _, err := d.session.ChannelMessageSendEmbed(d.channelID, embed); err != nil {
			return fmt.Errorf("send embed for %s: %w", p.ID, err)
		}
		slog.Debug("posted paper to discord", "id", p.ID, "channel", d.channelID)
	}

	return nil
}

func (d *Discord) Close() error {
	return d.session.Close()
}

func buildEmbed(p paper.Enriched) *discordgo.MessageEmbed {
	title := p.Title
	if len(title) > 250 {
		title = title[:247] + "..."
	}

	summary := p.TranslatedSummary
	if len(summary) > 1024 {
		summary = summary[:1021] + "..."
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: p.TranslatedTitle,
		URL:         p.AbsURL(),
		Color:       embedColor,
		Timestamp:   p.PublishedAt.UTC().Format(time.RFC3339),
	}

	if summary != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "要約",
			Value: summary,
		})
	}
	if len(p.Authors) > 0 {
		authors := strings.Join(p.Authors, ", ")
		if len(authors) > 1024 {
			authors = authors[:1021] + "..."
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Authors",
			Value:  authors,
			Inline: true,
		})
	}
	if p.PrimaryCategory != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: p.PrimaryCategory,
		}
	}

	return embed
}
