package services

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// SlackNotifier sends direct messages as the DayBrief bot.
type SlackNotifier struct {
	client *slack.Client
}

// NewSlackNotifier returns a disabled notifier when token is empty.
func NewSlackNotifier(token string, opts ...slack.Option) *SlackNotifier {
	if token == "" {
		return &SlackNotifier{}
	}
	return &SlackNotifier{client: slack.New(token, opts...)}
}

func (n *SlackNotifier) Enabled() bool {
	return n != nil && n.client != nil
}

// SendDM posts text to the Slack user, which opens the bot's DM channel.
func (n *SlackNotifier) SendDM(ctx context.Context, slackUserID, text string) error {
	if !n.Enabled() {
		return fmt.Errorf("slack bot token not configured")
	}
	_, _, err := n.client.PostMessageContext(ctx, slackUserID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack postMessage to %s: %w", slackUserID, err)
	}
	return nil
}
