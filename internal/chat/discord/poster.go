package discord

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/haojie06/canvas-relay/internal/chat"
)

// messageSender is the part of *discordgo.Session the poster uses.
type messageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Poster struct {
	session   messageSender
	channelId string
}

var _ chat.Poster = (*Poster)(nil)

// NewPoster opens a REST-only session, no gateway connection is made.
func NewPoster(token, channelId string) (*Poster, error) {
	ds, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &Poster{session: ds, channelId: channelId}, nil
}

func (p *Poster) PostText(ctx context.Context, text string) (*chat.Ack, error) {
	return p.send(ctx, &discordgo.MessageSend{Content: text})
}

// PostImage sends the file in the same request as the text.
func (p *Poster) PostImage(ctx context.Context, text string, file chat.File) (*chat.Ack, error) {
	return p.send(ctx, &discordgo.MessageSend{
		Content: text,
		Files: []*discordgo.File{
			{
				Name:        file.Name,
				ContentType: file.ContentType,
				Reader:      bytes.NewReader(file.Data),
			},
		},
	})
}

func (p *Poster) send(ctx context.Context, data *discordgo.MessageSend) (*chat.Ack, error) {
	message, err := p.session.ChannelMessageSendComplex(p.channelId, data, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("discord send to %s: %w", p.channelId, err)
	}
	ack := &chat.Ack{OK: true, Channel: message.ChannelID, Timestamp: message.ID}
	if len(message.Attachments) > 0 {
		ack.FileId = message.Attachments[0].ID
	}
	return ack, nil
}
