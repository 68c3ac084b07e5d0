package line

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"github.com/cellarline/cellarline-backend/pkg/config"
)

// Client wraps the LINE Messaging API bot client.
type Client struct {
	bot *linebot.Client
}

// New constructs a messaging client from channel credentials.
func New(cfg config.LineConfig) (*Client, error) {
	if cfg.ChannelSecret == "" || cfg.ChannelAccessToken == "" {
		return nil, fmt.Errorf("line channel secret and access token are required")
	}
	bot, err := linebot.New(cfg.ChannelSecret, cfg.ChannelAccessToken)
	if err != nil {
		return nil, fmt.Errorf("creating line bot client: %w", err)
	}
	return &Client{bot: bot}, nil
}

// PushText sends a text push message to the given LINE user.
func (c *Client) PushText(ctx context.Context, lineUserID, text string) error {
	if lineUserID == "" {
		return fmt.Errorf("line user id is required")
	}
	if _, err := c.bot.PushMessage(lineUserID, linebot.NewTextMessage(text)).WithContext(ctx).Do(); err != nil {
		return fmt.Errorf("push message: %w", err)
	}
	return nil
}

// ReplyText answers a webhook event using its reply token.
func (c *Client) ReplyText(ctx context.Context, replyToken, text string) error {
	if replyToken == "" {
		return fmt.Errorf("reply token is required")
	}
	if _, err := c.bot.ReplyMessage(replyToken, linebot.NewTextMessage(text)).WithContext(ctx).Do(); err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

// GetProfile fetches the LINE profile for a user who interacted with the bot.
func (c *Client) GetProfile(ctx context.Context, lineUserID string) (*Profile, error) {
	if lineUserID == "" {
		return nil, fmt.Errorf("line user id is required")
	}
	res, err := c.bot.GetProfile(lineUserID).WithContext(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &Profile{
		UserID:      res.UserID,
		DisplayName: res.DisplayName,
		PictureURL:  res.PictureURL,
	}, nil
}

// ParseWebhook validates the request signature and decodes webhook events.
func (c *Client) ParseWebhook(r *http.Request) ([]*linebot.Event, error) {
	events, err := c.bot.ParseRequest(r)
	if err != nil {
		return nil, fmt.Errorf("parse webhook request: %w", err)
	}
	return events, nil
}

// IsInvalidSignature reports whether err came from a bad webhook signature.
func IsInvalidSignature(err error) bool {
	return errors.Is(err, linebot.ErrInvalidSignature)
}
