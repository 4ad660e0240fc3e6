package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-shadow-bot/internal/channel"
	"telegram-shadow-bot/internal/config"
	"telegram-shadow-bot/internal/game/clash"
	"telegram-shadow-bot/internal/game/shadow"
	"telegram-shadow-bot/internal/handler"
	"telegram-shadow-bot/internal/pkg/lock"
	"telegram-shadow-bot/internal/service"
)

const welcomeText = `🌑 Welcome to the Shadow Bot!

/shadowgame — start a Shadow Game (tag or be consumed)
/s @username — tag a player when you are IT
/cultclash — start a Cult Clash (admins only)
/joinclash — join a running Cult Clash
/rank — XP leaderboard
/myxp — your XP, level, and recent rewards`

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	shadowGame *shadow.Game
	clashGame  *clash.Game

	shadowHandler      *handler.ShadowHandler
	clashHandler       *handler.ClashHandler
	leaderboardHandler *handler.LeaderboardHandler
}

// Dependencies holds everything the bot needs that lives outside it.
type Dependencies struct {
	Config   *config.Config
	Ledger   *service.LedgerService
	Identity *service.IdentityService
	Chats    *lock.ChatLock
}

// New creates the bot, the outbound sender chain, the game engines, and the
// handlers, and registers middleware and routes.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	// Outbound chain: telebot -> rate limiter -> presenter. The games only
	// ever see the presenter and the rate-limited sender.
	sender := channel.NewRateLimitedSender(
		channel.NewTelebotSender(teleBot),
		deps.Config.Sender.MessagesPerSecond,
		deps.Config.Sender.Burst,
	)
	presenter := channel.NewPresenter(sender)

	shadowGame := shadow.New(shadow.Config{
		TagTimeoutSeconds:  deps.Config.Games.Shadow.TagTimeoutSeconds,
		JoinChoicesMinutes: deps.Config.Games.Shadow.JoinChoicesMinutes,
		JoinXP:             deps.Config.Games.Shadow.JoinXP,
		WinXP:              deps.Config.Games.Shadow.WinXP,
	}, deps.Chats, presenter, deps.Identity, deps.Ledger)

	clashGame := clash.New(clash.Config{
		JoinSeconds:  deps.Config.Games.Clash.JoinSeconds,
		TickSeconds:  deps.Config.Games.Clash.TickSeconds,
		SurvivorGoal: deps.Config.Games.Clash.SurvivorGoal,
		WinXP:        deps.Config.Games.Clash.WinXP,
	}, deps.Chats, presenter, deps.Ledger)

	b := &Bot{
		bot:                teleBot,
		cfg:                deps.Config,
		shadowGame:         shadowGame,
		clashGame:          clashGame,
		shadowHandler:      handler.NewShadowHandler(shadowGame),
		clashHandler:       handler.NewClashHandler(deps.Config, clashGame),
		leaderboardHandler: handler.NewLeaderboardHandler(deps.Ledger),
	}

	b.registerMiddleware(deps.Identity)
	b.registerHandlers()

	return b, nil
}

func (b *Bot) registerMiddleware(identity *service.IdentityService) {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
	b.bot.Use(TrackMembersMiddleware(identity))
}

func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", func(c tele.Context) error {
		return c.Reply(welcomeText)
	})

	// Shadow Game
	b.bot.Handle("/shadowgame", b.shadowHandler.HandleStart)
	b.bot.Handle("/s", b.shadowHandler.HandleTag)

	// Cult Clash
	b.bot.Handle("/cultclash", b.clashHandler.HandleStart)
	b.bot.Handle("/joinclash", b.clashHandler.HandleJoin)

	// Leaderboard
	b.bot.Handle("/rank", b.leaderboardHandler.HandleRank)
	b.bot.Handle("/myxp", b.leaderboardHandler.HandleMyXP)

	b.bot.Handle(tele.OnCallback, b.handleCallback)

	// Plain chatter during a game bumps the status panel to the bottom.
	b.bot.Handle(tele.OnText, b.handleGameMessage)
}

// handleCallback routes inline button presses to the owning game by prefix.
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	// Telebot may add a \f prefix to callback data.
	data := strings.TrimPrefix(callback.Data, "\f")

	switch {
	case strings.HasPrefix(data, shadow.CallbackPrefix):
		return b.shadowHandler.HandleCallback(c)
	case strings.HasPrefix(data, clash.CallbackPrefix):
		return b.clashHandler.HandleCallback(c)
	}
	return nil
}

// handleGameMessage keeps the game status panel as the newest message in the
// conversation: while a game runs, a member's plain message is deleted and
// the panel re-sent below it. Hard UX requirement, not cosmetics.
func (b *Bot) handleGameMessage(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil || sender.IsBot {
		return nil
	}
	if strings.HasPrefix(c.Text(), "/") {
		return nil
	}
	if !b.shadowGame.Active(chat.ID) && !b.clashGame.Active(chat.ID) {
		return nil
	}

	if err := c.Delete(); err != nil {
		log.Debug().Err(err).Int64("chat_id", chat.ID).Msg("Could not delete member message during game")
	}
	if !b.shadowGame.Bump(chat.ID) {
		b.clashGame.Bump(chat.ID)
	}
	return nil
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
