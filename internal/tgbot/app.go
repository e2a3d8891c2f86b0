package tgbot

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/whenToSleep/race-info-bot/internal/i18n"
	"github.com/whenToSleep/race-info-bot/internal/identity"
	"github.com/whenToSleep/race-info-bot/internal/logger"
	"github.com/whenToSleep/race-info-bot/internal/models"
	"github.com/whenToSleep/race-info-bot/internal/raceclock"
	"github.com/whenToSleep/race-info-bot/internal/source"
	"github.com/whenToSleep/race-info-bot/internal/state"
)

// botAPI is the part of *tgbotapi.BotAPI the app talks to.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Notifier is the scheduler side the handlers report to.
type Notifier interface {
	CatchUp(ctx context.Context, audienceID int64) error
	CompletedLaps() int
}

type App struct {
	bot      botAPI
	store    *state.Store
	source   source.Provider
	catalog  *i18n.Catalog
	race     raceclock.Config
	now      func() time.Time
	notifier Notifier
	log      logger.Logger
}

func New(token string, store *state.Store, src source.Provider, cat *i18n.Catalog, race raceclock.Config, log logger.Logger) (*App, error) {
	b, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	b.Debug = false
	log.Info("telegram bot authorized", "username", b.Self.UserName, "id", b.Self.ID)
	return newApp(b, store, src, cat, race, log), nil
}

func newApp(b botAPI, store *state.Store, src source.Provider, cat *i18n.Catalog, race raceclock.Config, log logger.Logger) *App {
	return &App{
		bot:     b,
		store:   store,
		source:  src,
		catalog: cat,
		race:    race,
		now:     time.Now,
		log:     log,
	}
}

// SetNotifier connects the scheduler. It must be called before Run.
func (a *App) SetNotifier(n Notifier) {
	a.notifier = n
}

func (a *App) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query", "my_chat_member"}

	updates := a.bot.GetUpdatesChan(u)
	defer a.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			a.handleUpdate(ctx, upd)
		}
	}
}

func (a *App) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	var err error
	switch {
	case upd.MyChatMember != nil:
		err = a.handleMembership(ctx, upd.MyChatMember)
	case upd.Message != nil:
		err = a.handleMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		err = a.handleCallback(ctx, upd.CallbackQuery)
	}
	if err != nil {
		a.log.Error("handle update", "update_id", upd.UpdateID, "error", err)
	}
}

// SendMessage delivers HTML text; it is the scheduler's transport.
func (a *App) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := a.bot.Send(msg)
	return err
}

func (a *App) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = kb
	_, err := a.bot.Send(msg)
	return err
}

func (a *App) text(userID int64, key string, args ...string) string {
	return a.catalog.Text(a.store.User(userID).Language, key, args...)
}

// ---------- Audience registration ----------

func (a *App) handleMembership(ctx context.Context, upd *tgbotapi.ChatMemberUpdated) error {
	chat := upd.Chat
	if chat.IsPrivate() {
		return nil
	}
	switch upd.NewChatMember.Status {
	case "member", "administrator":
		if !a.store.AddAudience(chat.ID) {
			return nil
		}
		a.log.Info("audience registered", "chat", chat.ID, "type", chat.Type, "title", chat.Title)
		if a.notifier != nil {
			return a.notifier.CatchUp(ctx, chat.ID)
		}
	case "left", "kicked":
		a.store.RemoveAudience(chat.ID)
		a.log.Info("audience removed", "chat", chat.ID)
	}
	return nil
}

// ---------- Message handling ----------

func (a *App) handleMessage(ctx context.Context, m *tgbotapi.Message) error {
	if m.Chat == nil || !m.Chat.IsPrivate() || m.From == nil {
		return nil
	}
	userID := m.From.ID
	if !a.store.KnownUser(userID) {
		a.store.SetLanguage(userID, i18n.Match(m.From.LanguageCode))
	}

	switch m.Command() {
	case "start":
		return a.showStart(userID)
	case "stop":
		return a.stopTracking(ctx, userID)
	case "status":
		return a.SendMessage(ctx, userID, html.EscapeString(raceclock.Describe(a.now(), a.race).Text()))
	case "language":
		return a.showLanguagePicker(userID)
	case "":
		return a.track(ctx, userID, m.Text)
	default:
		return nil
	}
}

func (a *App) showStart(userID int64) error {
	lang := a.store.User(userID).Language
	warning := a.catalog.Text(lang, "current_language_warning", "language", a.catalog.Text(lang, "language_name"))
	return a.sendWithKeyboard(userID, warning, a.languageConfirmKeyboard(lang))
}

func (a *App) showLanguagePicker(userID int64) error {
	return a.sendWithKeyboard(userID, a.text(userID, "choose_language"), a.languageKeyboard())
}

func (a *App) track(ctx context.Context, userID int64, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	u := a.store.User(userID)
	if u.IsTracking && u.Tracked != nil {
		return a.sendWithKeyboard(userID,
			a.text(userID, "tracking_already_active", "entity", a.entityText(userID, *u.Tracked)),
			a.stopKeyboard(u.Language))
	}

	snap, err := a.source.LoadSnapshot(ctx)
	if err != nil {
		a.log.Warn("lookup without race data", "user", userID, "error", err)
		return a.SendMessage(ctx, userID, a.text(userID, "error"))
	}

	match, ok := identity.Resolve(snap, input)
	if !ok {
		a.log.Info("identifier not found", "user", userID, "input", input)
		return a.SendMessage(ctx, userID, a.text(userID, "not_found", "input", html.EscapeString(input)))
	}

	entity := match.Entity()
	completed := 0
	if a.notifier != nil {
		completed = a.notifier.CompletedLaps()
	}
	a.store.StartTracking(userID, entity, completed)
	a.log.Info("tracking started", "user", userID, "kind", string(entity.Kind), "value", entity.Value)

	text := a.text(userID, "found",
		"entity", a.entityText(userID, entity),
		"team", html.EscapeString(match.Participant.TeamName),
		"start_position", strconv.Itoa(match.Participant.StartPosition),
	)
	return a.sendWithKeyboard(userID, text, a.stopKeyboard(u.Language))
}

func (a *App) entityText(userID int64, e models.TrackedEntity) string {
	key := "team"
	if e.Kind == models.EntityWallet {
		key = "wallet"
	}
	return a.text(userID, key, "value", html.EscapeString(e.Value))
}

func (a *App) stopTracking(ctx context.Context, userID int64) error {
	if a.store.StopTracking(userID) {
		a.log.Info("tracking stopped", "user", userID)
		return a.SendMessage(ctx, userID, a.text(userID, "tracking_stopped"))
	}
	return a.SendMessage(ctx, userID, a.text(userID, "tracking_not_active"))
}

// ---------- Callback handling ----------

func (a *App) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q.From == nil {
		return nil
	}
	userID := q.From.ID
	data := q.Data

	// ack
	cb := tgbotapi.NewCallback(q.ID, "")
	if _, err := a.bot.Request(cb); err != nil {
		a.log.Debug("callback ack", "error", err)
	}

	switch data {
	case cbKeepLanguage:
		return a.SendMessage(ctx, userID, a.text(userID, "start"))
	case cbChangeLanguage:
		return a.showLanguagePicker(userID)
	case cbStopTracking:
		return a.stopTracking(ctx, userID)
	}

	if strings.HasPrefix(data, cbLanguagePrefix) {
		lang, ok := models.ParseLanguage(strings.TrimPrefix(data, cbLanguagePrefix))
		if !ok {
			return fmt.Errorf("unknown language callback %q", data)
		}
		a.store.SetLanguage(userID, lang)
		return a.SendMessage(ctx, userID, a.text(userID, "start"))
	}
	return nil
}
