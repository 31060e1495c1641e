package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"token-radar/internal/domain"
)

const (
	defaultBotAPIBase = "https://api.telegram.org"

	// nameLookupTimeout bounds the best-effort token name fetch so a
	// slow aggregator cannot hold up an alert.
	nameLookupTimeout = 5 * time.Second
)

// TelegramConfig configures the Telegram Bot API notifier.
type TelegramConfig struct {
	// BaseURL overrides the Bot API host, mainly for tests.
	BaseURL string
	// Token is the bot token from BotFather.
	Token string
	// ChatID is the destination chat. Accepts a numeric id or @channel.
	ChatID string
	// DryRun logs alerts instead of sending them. Delivery still
	// counts as successful so cooldowns behave like production.
	DryRun bool
}

// Telegram sends formatted Markdown alerts to one chat via the
// Telegram Bot API.
type Telegram struct {
	config TelegramConfig
	names  NameLookup
	client *resty.Client
}

var _ Notifier = (*Telegram)(nil)

// NewTelegram creates a Telegram notifier. names may be nil to skip
// token name lookups.
func NewTelegram(config TelegramConfig, names NameLookup) (*Telegram, error) {
	if config.BaseURL == "" {
		config.BaseURL = defaultBotAPIBase
	}
	if !config.DryRun && (config.Token == "" || config.ChatID == "") {
		return nil, fmt.Errorf("telegram token and chat id are required outside dry-run")
	}

	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("User-Agent", "token-radar/1.0")

	return &Telegram{config: config, names: names, client: client}, nil
}

// Notify formats and delivers one alert.
func (t *Telegram) Notify(ctx context.Context, token *domain.TrendingToken) error {
	name := ""
	if t.names != nil {
		nameCtx, cancel := context.WithTimeout(ctx, nameLookupTimeout)
		name = t.names.TokenName(nameCtx, token.Contract)
		cancel()
	}

	text := formatAlert(token, name)

	if t.config.DryRun {
		logrus.Infof("[dry-run] Would send alert:\n%s", text)
		return nil
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"chat_id":                  t.config.ChatID,
			"text":                     text,
			"parse_mode":               "Markdown",
			"disable_web_page_preview": true,
		}).
		Post(fmt.Sprintf("%s/bot%s/sendMessage", t.config.BaseURL, t.config.Token))
	if err != nil {
		return fmt.Errorf("send telegram alert: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("telegram API %d: %s", resp.StatusCode(), resp.Body())
	}

	logrus.Infof("Alert sent for %s (%s, score=%.1f)", token.Contract, token.Chain, token.Score)
	return nil
}

// formatAlert renders the Markdown alert body. Velocity shows as a
// signed percentage; exactly zero renders as NEW rather than +0%.
func formatAlert(token *domain.TrendingToken, tokenName string) string {
	velocity := "NEW"
	if token.Velocity != 0 {
		velocity = fmt.Sprintf("%+.0f%%", token.Velocity*100)
	}

	var b strings.Builder
	b.WriteString("🚨 *TRENDING TOKEN DETECTED*\n\n")
	fmt.Fprintf(&b, "🔗 *Chain:* %s\n", strings.ToUpper(string(token.Chain)))
	if tokenName != "" {
		fmt.Fprintf(&b, "🪙 *Token:* %s\n", tokenName)
	}
	fmt.Fprintf(&b, "📋 *Contract:* `%s`\n", token.Contract)
	fmt.Fprintf(&b, "💬 *Mentions:* %d\n", token.MentionCount)
	fmt.Fprintf(&b, "👥 *Unique Groups:* %d\n", token.UniqueSources)
	fmt.Fprintf(&b, "📈 *Velocity:* %s\n", velocity)
	fmt.Fprintf(&b, "⭐ *Score:* %.1f\n", token.Score)
	fmt.Fprintf(&b, "\n🔗 %s\n", buildLinks(token.Chain, token.Contract))
	return b.String()
}

// buildLinks renders chain-appropriate explorer and terminal links.
func buildLinks(chain domain.Chain, contract string) string {
	switch chain {
	case domain.ChainSolana:
		return fmt.Sprintf(
			"[DS](https://dexscreener.com/solana/%s)"+
				" | [GMGN](https://gmgn.ai/sol/token/%s)"+
				" | [PH](https://photon-sol.tinyastro.io/en/lp/%s)"+
				" | [AXI](https://axiom.trade/t/%s)"+
				" | [BullX](https://bullx.io/terminal?chainId=1399811149&address=%s)",
			contract, contract, contract, contract, contract)
	case domain.ChainEVM:
		// Ethereum links work for most EVM chains.
		return fmt.Sprintf(
			"[DS](https://dexscreener.com/ethereum/%s)"+
				" | [GMGN](https://gmgn.ai/eth/token/%s)"+
				" | [DT](https://www.dextools.io/app/en/ether/pair-explorer/%s)"+
				" | [Etherscan](https://etherscan.io/token/%s)",
			contract, contract, contract, contract)
	default:
		return fmt.Sprintf(
			"[DS](https://dexscreener.com/%s/%s) | [GMGN](https://gmgn.ai/%s/token/%s)",
			chain, contract, chain, contract)
	}
}
