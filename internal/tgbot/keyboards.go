package tgbot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/whenToSleep/race-info-bot/internal/models"
)

const (
	cbLanguagePrefix = "language_"
	cbKeepLanguage   = "keep_language"
	cbChangeLanguage = "change_language"
	cbStopTracking   = "stop_tracking"
)

var flags = map[models.Language]string{
	models.LanguageRU: "🇷🇺",
	models.LanguageEN: "🇬🇧",
	models.LanguageUK: "🇺🇦",
}

func (a *App) languageButton(lang models.Language) tgbotapi.InlineKeyboardButton {
	label := flags[lang] + " " + a.catalog.Text(lang, "language_name")
	return tgbotapi.NewInlineKeyboardButtonData(label, cbLanguagePrefix+string(lang))
}

func (a *App) languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			a.languageButton(models.LanguageRU),
			a.languageButton(models.LanguageEN),
		),
		tgbotapi.NewInlineKeyboardRow(
			a.languageButton(models.LanguageUK),
		),
	)
}

func (a *App) languageConfirmKeyboard(lang models.Language) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(a.catalog.Text(lang, "keep_current"), cbKeepLanguage),
			tgbotapi.NewInlineKeyboardButtonData(a.catalog.Text(lang, "change_language"), cbChangeLanguage),
		),
	)
}

func (a *App) stopKeyboard(lang models.Language) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏹ "+a.catalog.Text(lang, "stop_tracking"), cbStopTracking),
		),
	)
}
