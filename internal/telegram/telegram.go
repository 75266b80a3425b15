package telegram

import (
	"net/http"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"
)

// Settings 机器人连接配置
type Settings struct {
	Token  string
	Client *http.Client
}

// Telegram 交易计划通知机器人
type Telegram struct {
	logger   *zap.Logger
	settings Settings
	client   *tele.Bot
}

type Option func(telegram *Telegram)

func NewTelegram(logger *zap.Logger, settings Settings, options ...Option) (*Telegram, error) {

	poller := &tele.LongPoller{Timeout: 10 * time.Second}

	userMiddleware := tele.NewMiddlewarePoller(poller, func(u *tele.Update) bool {
		return true
	})

	client, err := tele.NewBot(tele.Settings{
		ParseMode: tele.ModeMarkdown,
		Token:     settings.Token,
		Poller:    userMiddleware,
		Client:    settings.Client,
	})
	if err != nil {
		return nil, err
	}

	client.Use(middleware.AutoRespond())

	err = client.SetCommands([]tele.Command{
		{Text: "/start", Description: "启动机器人"},
		{Text: "/help", Description: "获取帮助信息"},
	})
	if err != nil {
		return nil, err
	}

	bot := &Telegram{
		logger:   logger,
		settings: settings,
		client:   client,
	}

	for _, option := range options {
		option(bot)
	}

	return bot, nil
}

func (r *Telegram) Start() {
	go r.client.Start()
}

// Notify 向指定会话发送Markdown消息
func (r *Telegram) Notify(chatId, msg string) error {
	_chatId := cast.ToInt(chatId)
	_, err := r.client.Send(tele.ChatID(_chatId), msg, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	return err
}
