package gateway

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

type DiscordGateway struct {
	Session *discordgo.Session
	Handler Handler
}

func NewDiscordGateway(token string, handler Handler) (*DiscordGateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	gw := &DiscordGateway{
		Session: session,
		Handler: handler,
	}
	session.AddHandler(gw.onMessage)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages

	return gw, nil
}

func (d *DiscordGateway) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	log.Printf("[%s] %s", m.Author.Username, m.Content)

	ctx := context.Background()
	sessionID := fmt.Sprintf("dc:%s", m.ChannelID)
	response, err := d.Handler.HandleMessage(ctx, sessionID, m.Content)
	if err != nil {
		log.Printf("Error handling message: %v", err)
		response = "Something went wrong on my side. Please try again."
	}

	if _, err := s.ChannelMessageSend(m.ChannelID, response); err != nil {
		log.Printf("Error sending Discord message: %v", err)
	}
}

func (d *DiscordGateway) Start() error {
	return d.Session.Open()
}

func (d *DiscordGateway) Send(chatID string, text string) error {
	id := chatID
	fmt.Sscanf(chatID, "dc:%s", &id)
	_, err := d.Session.ChannelMessageSend(id, text)
	return err
}

func (d *DiscordGateway) Stop() error {
	return d.Session.Close()
}
