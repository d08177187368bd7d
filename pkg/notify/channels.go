package notify

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	ntfy "github.com/go-pkgz/notify"
)

// channel is one delivery target. telegram parses HTML, so its text gets escaped.
type channel struct {
	notifier   ntfy.Notifier
	dest       string
	htmlEscape bool
}

// channelBuilder validates p for one channel kind and returns its delivery targets.
type channelBuilder func(p Params) ([]channel, error)

var builders = map[string]channelBuilder{
	"telegram": telegramChannels,
	"email":    emailChannels,
	"slack":    slackChannels,
	"webhook":  webhookChannels,
}

// unavailableError marks a channel that is configured correctly but can't be reached.
// New logs it and keeps going instead of failing the run.
type unavailableError struct {
	err error
}

func (e *unavailableError) Error() string { return e.err.Error() }
func (e *unavailableError) Unwrap() error { return e.err }

// telegramConnect talks to the bot api on creation, tests replace it.
var telegramConnect = func(token string) (ntfy.Notifier, error) {
	return ntfy.NewTelegram(ntfy.TelegramParams{Token: token})
}

func telegramChannels(p Params) ([]channel, error) {
	switch {
	case p.TelegramToken == "":
		return nil, errors.New("notify_telegram_token is required")
	case p.TelegramChat == "":
		return nil, errors.New("notify_telegram_chat is required")
	}

	tg, err := telegramConnect(p.TelegramToken)
	if err != nil {
		// api errors carry the request url, and the url carries the token
		msg := strings.ReplaceAll(err.Error(), p.TelegramToken, "[REDACTED]")
		return nil, &unavailableError{err: errors.New(msg)}
	}
	return []channel{{notifier: tg, dest: "telegram:" + p.TelegramChat + "?parseMode=HTML", htmlEscape: true}}, nil
}

func emailChannels(p Params) ([]channel, error) {
	switch {
	case p.SMTPHost == "":
		return nil, errors.New("notify_smtp_host is required")
	case p.EmailFrom == "":
		return nil, errors.New("notify_email_from is required")
	case len(p.EmailTo) == 0:
		return nil, errors.New("notify_email_to is required")
	}

	smtp := ntfy.NewEmail(ntfy.SMTPParams{
		Host:     p.SMTPHost,
		Port:     p.SMTPPort,
		Username: p.SMTPUsername,
		Password: p.SMTPPassword,
		StartTLS: p.SMTPStartTLS,
	})
	q := url.Values{}
	q.Set("from", p.EmailFrom)
	q.Set("subject", "logincheck results")
	dest := fmt.Sprintf("mailto:%s?%s", strings.Join(p.EmailTo, ","), q.Encode())
	return []channel{{notifier: smtp, dest: dest}}, nil
}

func slackChannels(p Params) ([]channel, error) {
	switch {
	case p.SlackToken == "":
		return nil, errors.New("notify_slack_token is required")
	case p.SlackChannel == "":
		return nil, errors.New("notify_slack_channel is required")
	}
	return []channel{{notifier: ntfy.NewSlack(p.SlackToken), dest: "slack:" + p.SlackChannel}}, nil
}

// webhookChannels shares one notifier across all urls.
func webhookChannels(p Params) ([]channel, error) {
	if len(p.WebhookURLs) == 0 {
		return nil, errors.New("notify_webhook_urls is required")
	}
	wh := ntfy.NewWebhook(ntfy.WebhookParams{})
	res := make([]channel, 0, len(p.WebhookURLs))
	for _, u := range p.WebhookURLs {
		res = append(res, channel{notifier: wh, dest: u})
	}
	return res, nil
}
