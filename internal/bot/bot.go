package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/cashflow/internal/commands"
	"github.com/susu3304/cashflow/internal/ledger"
	"github.com/susu3304/cashflow/internal/settle"
	"go.uber.org/zap"
)

type Bot struct {
	session  *discordgo.Session
	cashflow *commands.Cashflow
	logger   *zap.Logger
}

func New(token string, svc *ledger.Service, strategy settle.Strategy, logger *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	bot := &Bot{
		session:  session,
		cashflow: commands.NewCashflow(svc, strategy, logger),
		logger:   logger,
	}

	// Register event handlers
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentsGuilds

	return bot, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.logger.Info("Discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}
