package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"rugby-scorekeeper/config"
	"rugby-scorekeeper/internal/match"
	mtH "rugby-scorekeeper/internal/matchHandlers"
	"rugby-scorekeeper/internal/models"
	"rugby-scorekeeper/internal/report"
	"rugby-scorekeeper/internal/session"
	tmH "rugby-scorekeeper/internal/teamHandlers"
	tdH "rugby-scorekeeper/internal/tempDataHandlers"
)

// Sender: часть BotAPI, которой пользуется бот.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type PDFRenderer interface {
	MatchPDF(ctx context.Context, m models.Match) ([]byte, error)
	SummaryPDF(ctx context.Context, m models.Match) ([]byte, error)
}

// HandlersConfig группирует обработчики сущностей.
type HandlersConfig struct {
	MatchHandler *mtH.Handler
	TeamHandler  tmH.Handler
}

// Bot ведёт живые матчи через session.Manager из Telegram.
type Bot struct {
	API      *tgbotapi.BotAPI
	Sender   Sender
	Config   *config.Config
	Sessions *session.Manager
	Handlers HandlersConfig
	TempData *tdH.Store
	PDF      PDFRenderer
	Log      *zap.SugaredLogger
	Now      func() time.Time

	mu sync.Mutex
	// текущий матч каждого чата
	current map[int64]string
}

// NewBot создаёт и инициализирует нового бота.
func NewBot(cfg *config.Config, sessions *session.Manager, matches *mtH.Handler, pdf PDFRenderer, log *zap.SugaredLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TgApiToken)
	if err != nil {
		return nil, err
	}
	api.Debug = cfg.Env == "development"

	b := newBot(api, cfg, sessions, matches, pdf, log)
	b.API = api
	return b, nil
}

func newBot(sender Sender, cfg *config.Config, sessions *session.Manager, matches *mtH.Handler, pdf PDFRenderer, log *zap.SugaredLogger) *Bot {
	return &Bot{
		Sender:   sender,
		Config:   cfg,
		Sessions: sessions,
		Handlers: HandlersConfig{MatchHandler: matches},
		TempData: tdH.New(),
		PDF:      pdf,
		Log:      log,
		Now:      time.Now,
		current:  make(map[int64]string),
	}
}

// Run запускает цикл получения и обработки обновлений до отмены ctx.
func (b *Bot) Run(ctx context.Context) {
	b.Log.Infof("Авторизация выполнена на аккаунте %s", b.API.Self.UserName)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.API.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.API.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				go b.handleMessage(update.Message)
			} else if update.CallbackQuery != nil {
				go b.handleCallbackQuery(update.CallbackQuery)
			}
		}
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.Sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.Log.Warnw("Не удалось отправить сообщение", "chat", chatID, "error", err)
	}
}

func (b *Bot) setCurrent(chatID int64, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current[chatID] = id
}

// chatsFor: чаты, у которых текущим выбран матч id.
func (b *Bot) chatsFor(id string) []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []int64
	for chat, m := range b.current {
		if m == id {
			out = append(out, chat)
		}
	}
	return out
}

// currentSession: открытая сессия текущего матча чата.
func (b *Bot) currentSession(chatID int64) (*session.Session, bool) {
	b.mu.Lock()
	id, ok := b.current[chatID]
	b.mu.Unlock()
	if !ok {
		b.sendMessage(chatID, "Нет текущего матча. Используйте /new или /open <id>.")
		return nil, false
	}
	s, ok := b.Sessions.Get(id)
	if !ok {
		b.sendMessage(chatID, "Матч закрыт. Откройте его снова: /open "+id)
		return nil, false
	}
	return s, true
}

// команды, доступные без прав администратора
var readOnly = map[string]bool{
	"/start": true, "/help": true, "/matches": true, "/status": true,
	"/lineup": true, "/report": true, "/summary": true, "/pdf": true,
}

// handleMessage обрабатывает входящие сообщения.
func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	b.processCommand(msg)
}

// processCommand разбирает и выполняет команду.
func (b *Bot) processCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	command, args := parseCommand(msg.Text)
	if command == "" {
		return
	}
	if !readOnly[command] && !b.Config.IsAdmin(chatID) {
		b.sendMessage(chatID, "У вас нет прав для выполнения этой команды.")
		return
	}

	switch command {
	case "/start", "/help":
		b.sendMessage(chatID, helpText)
	case "/new":
		b.newMatch(chatID)
	case "/matches":
		b.listMatches(chatID)
	case "/open":
		if len(args) < 1 {
			b.sendMessage(chatID, "Используйте: /open <id>")
			return
		}
		b.openMatch(chatID, args[0])
	case "/status":
		if s, ok := b.currentSession(chatID); ok {
			b.sendMessage(chatID, statusText(s.Snapshot(), s.Stats()))
		}
	case "/pause":
		b.withSession(chatID, func(s *session.Session) (string, error) {
			paused, err := s.TogglePause()
			if paused {
				return "⏸ Пауза", err
			}
			return "▶️ Время пошло", err
		})
	case "/try", "/conversion", "/penalty":
		b.score(chatID, scoreKinds[command], args)
	case "/yellow", "/red":
		b.card(chatID, cardKinds[command], args)
	case "/sub":
		b.substitute(chatID, args)
	case "/lineup":
		b.lineup(chatID, args)
	case "/half":
		b.withSession(chatID, func(s *session.Session) (string, error) {
			err := s.AdvanceToSecondHalf()
			if errors.Is(err, match.ErrPhaseTransitionIgnored) {
				return "", errors.New("первый тайм ещё не окончен")
			}
			return "▶️ Второй тайм. Продолжите время командой /pause.", err
		})
	case "/finish":
		b.withSession(chatID, func(s *session.Session) (string, error) {
			return "🏁 Матч завершён и сохранён", s.Finish(context.Background())
		})
	case "/save":
		if s, ok := b.currentSession(chatID); ok {
			if err := s.Save(context.Background()); err != nil {
				b.sendMessage(chatID, "❌ "+err.Error())
				return
			}
			b.sendMessage(chatID, "💾 Сохранено")
		}
	case "/report":
		if s, ok := b.currentSession(chatID); ok {
			b.sendMessage(chatID, report.Full(s.Snapshot()))
		}
	case "/summary":
		if s, ok := b.currentSession(chatID); ok {
			b.sendMessage(chatID, report.Summary(s.Snapshot()))
		}
	case "/pdf":
		b.sendPDF(chatID, args)
	case "/close":
		b.closeMatch(chatID)
	default:
		b.sendMessage(chatID, "Неизвестная команда. Попробуйте /start.")
	}
}

// withSession выполняет команду над текущим матчем и отвечает результатом.
func (b *Bot) withSession(chatID int64, cmd func(*session.Session) (string, error)) {
	s, ok := b.currentSession(chatID)
	if !ok {
		return
	}
	text, err := cmd(s)
	if err != nil {
		b.sendMessage(chatID, "❌ "+errorText(err))
		return
	}
	b.sendMessage(chatID, text)
}

func errorText(err error) string {
	switch {
	case errors.Is(err, session.ErrMatchFinished):
		return "матч уже завершён"
	case errors.Is(err, match.ErrConversionNotAllowed):
		return "нет попытки для реализации за последние 5 минут"
	}
	var sub *match.InvalidSubstitutionError
	if errors.As(err, &sub) {
		return "замена невозможна: " + sub.Reason
	}
	var card *match.CardRejectedError
	if errors.As(err, &card) {
		return "карточка не выдана: " + card.Reason
	}
	return err.Error()
}

func (b *Bot) newMatch(chatID int64) {
	s, err := b.Sessions.Start(context.Background())
	if err != nil {
		b.sendMessage(chatID, "❌ Не удалось создать матч: "+err.Error())
		return
	}
	b.setCurrent(chatID, s.ID())
	b.sendMessage(chatID, "✅ Новый матч создан. Время на паузе, /pause запускает часы.\n\n"+statusText(s.Snapshot(), s.Stats()))
}

func (b *Bot) openMatch(chatID int64, id string) {
	s, err := b.Sessions.Open(context.Background(), id)
	if err != nil {
		b.sendMessage(chatID, "❌ Матч не найден: "+id)
		return
	}
	b.setCurrent(chatID, s.ID())
	b.sendMessage(chatID, statusText(s.Snapshot(), s.Stats()))
}

func (b *Bot) closeMatch(chatID int64) {
	s, ok := b.currentSession(chatID)
	if !ok {
		return
	}
	if err := b.Sessions.Close(context.Background(), s.ID()); err != nil {
		b.sendMessage(chatID, "❌ "+err.Error())
		return
	}
	b.mu.Lock()
	delete(b.current, chatID)
	b.mu.Unlock()
	b.TempData.DeleteTemporaryData(chatID)
	b.sendMessage(chatID, "Матч закрыт и сохранён")
}

func (b *Bot) listMatches(chatID int64) {
	all, err := b.Handlers.MatchHandler.GetAllMatches(context.Background())
	if err != nil {
		b.sendMessage(chatID, "Ошибка получения списка матчей")
		return
	}
	if len(all) == 0 {
		b.sendMessage(chatID, "Сохранённых матчей нет.")
		return
	}
	var sb strings.Builder
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, m := range all {
		sb.WriteString(matchLine(m))
		sb.WriteString("\n")
		if i < 10 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(report.Build(m).Scoreline(), "open:"+m.ID)))
		}
	}
	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.Sender.Send(msg)
}

var scoreKinds = map[string]models.ScoreKind{
	"/try":        models.ScoreTry,
	"/conversion": models.ScoreConversion,
	"/penalty":    models.ScorePenalty,
}

var cardKinds = map[string]models.CardKind{
	"/yellow": models.CardYellow,
	"/red":    models.CardRed,
}

// score: без стороны предлагает выбрать команду кнопками, выбор ждёт в TempData.
func (b *Bot) score(chatID int64, kind models.ScoreKind, args []string) {
	s, ok := b.currentSession(chatID)
	if !ok {
		return
	}
	if len(args) == 0 {
		b.TempData.SetTemporaryData(chatID, "score_kind", string(kind))
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("%s: какая команда?", kind))
		snap := s.Snapshot()
		var buttons []tgbotapi.InlineKeyboardButton
		for _, t := range snap.Teams {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(t.Name, "score:"+string(t.Side)))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
		b.Sender.Send(msg)
		return
	}
	side, err := tmH.ParseSide(args[0])
	if err != nil {
		b.sendMessage(chatID, "❌ "+err.Error())
		return
	}
	playerNumber := 0
	if len(args) > 1 {
		if playerNumber, err = parseNumber(args[1]); err != nil {
			b.sendMessage(chatID, "❌ "+err.Error())
			return
		}
	}
	b.addScore(chatID, s, kind, side, playerNumber)
}

func (b *Bot) addScore(chatID int64, s *session.Session, kind models.ScoreKind, side models.Side, number int) {
	snap := s.Snapshot()
	team, err := b.Handlers.TeamHandler.Team(snap, side)
	if err != nil {
		b.sendMessage(chatID, "❌ "+err.Error())
		return
	}
	playerID := ""
	if number > 0 {
		p, err := b.Handlers.TeamHandler.PlayerByNumber(snap, side, number)
		if err != nil {
			b.sendMessage(chatID, "❌ "+err.Error())
			return
		}
		playerID = p.ID
	}
	ev, err := s.AddScore(team.ID, kind, playerID)
	if err != nil {
		b.sendMessage(chatID, "❌ "+errorText(err))
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("✅ %s +%d (%s, %d')\n%s", kind, ev.Points, team.Name, ev.Minute,
		report.Build(s.Snapshot()).Scoreline()))
}

func (b *Bot) card(chatID int64, kind models.CardKind, args []string) {
	if len(args) < 2 {
		b.sendMessage(chatID, "Используйте: /yellow <blue|red> <номер>")
		return
	}
	s, ok := b.currentSession(chatID)
	if !ok {
		return
	}
	side, err := tmH.ParseSide(args[0])
	if err != nil {
		b.sendMessage(chatID, "❌ "+err.Error())
		return
	}
	number, err := parseNumber(args[1])
	if err != nil {
		b.sendMessage(chatID, "❌ "+err.Error())
		return
	}
	p, err := b.Handlers.TeamHandler.PlayerByNumber(s.Snapshot(), side, number)
	if err != nil {
		b.sendMessage(chatID, "❌ "+err.Error())
		return
	}
	c, err := s.AddCard(p.ID, kind)
	if err != nil {
		b.sendMessage(chatID, "❌ "+errorText(err))
		return
	}
	text := fmt.Sprintf("🟥 Красная карточка: #%d %s (%d')", p.Number, p.Name, c.Minute)
	if kind == models.CardYellow {
		text = fmt.Sprintf("🟨 Жёлтая карточка: #%d %s (%d'), удаление на 10 минут", p.Number, p.Name, c.Minute)
	}
	b.sendMessage(chatID, text)
}

func (b *Bot) substitute(chatID int64, args []string) {
	if len(args) < 3 {
		b.sendMessage(chatID, "Используйте: /sub <blue|red> <уходит> <выходит>")
		return
	}
	s, ok := b.currentSession(chatID)
	if !ok {
		return
	}
	side, err := tmH.ParseSide(args[0])
	if err != nil {
		b.sendMessage(chatID, "❌ "+err.Error())
		return
	}
	outNum, err := parseNumber(args[1])
	if err != nil {
		b.sendMessage(chatID, "❌ "+err.Error())
		return
	}
	inNum, err := parseNumber(args[2])
	if err != nil {
		b.sendMessage(chatID, "❌ "+err.Error())
		return
	}
	snap := s.Snapshot()
	out, err := b.Handlers.TeamHandler.PlayerByNumber(snap, side, outNum)
	if err != nil {
		b.sendMessage(chatID, "❌ "+err.Error())
		return
	}
	in, err := b.Handlers.TeamHandler.PlayerByNumber(snap, side, inNum)
	if err != nil {
		b.sendMessage(chatID, "❌ "+err.Error())
		return
	}
	team := snap.TeamBySide(side)
	sub, err := s.Substitute(team.ID, out.ID, in.ID)
	if err != nil {
		b.sendMessage(chatID, "❌ "+errorText(err))
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("🔄 %s (%d'): уходит #%d %s, выходит #%d %s",
		team.Name, sub.Minute, out.Number, out.Name, in.Number, in.Name))
}

func (b *Bot) lineup(chatID int64, args []string) {
	s, ok := b.currentSession(chatID)
	if !ok {
		return
	}
	sides := []models.Side{models.SideBlue, models.SideRed}
	if len(args) > 0 {
		side, err := tmH.ParseSide(args[0])
		if err != nil {
			b.sendMessage(chatID, "❌ "+err.Error())
			return
		}
		sides = []models.Side{side}
	}
	snap := s.Snapshot()
	for _, side := range sides {
		if err := b.Handlers.TeamHandler.SendLineup(b.Sender, chatID, snap, side); err != nil {
			b.Log.Debugw("Состав не отправлен", "chat", chatID, "error", err)
		}
	}
}

func (b *Bot) sendPDF(chatID int64, args []string) {
	s, ok := b.currentSession(chatID)
	if !ok {
		return
	}
	snap := s.Snapshot()
	render, name := b.PDF.MatchPDF, report.MatchFilename(snap, b.Now())
	if len(args) > 0 && args[0] == "summary" {
		render, name = b.PDF.SummaryPDF, report.SummaryFilename(b.Now())
	}
	data, err := render(context.Background(), snap)
	if err != nil {
		b.Log.Errorw("Ошибка генерации PDF", "match", snap.ID, "error", err)
		b.sendMessage(chatID, "❌ Не удалось сформировать PDF")
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := b.Sender.Send(doc); err != nil {
		b.Log.Warnw("Не удалось отправить PDF", "chat", chatID, "error", err)
	}
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	if query.Message == nil || query.Message.Chat == nil {
		return
	}
	chatID := query.Message.Chat.ID
	data := query.Data

	if !b.Config.IsAdmin(chatID) && !strings.HasPrefix(data, "open:") {
		b.Sender.Request(tgbotapi.NewCallback(query.ID, "Нет прав"))
		return
	}

	switch {
	case strings.HasPrefix(data, "open:"):
		b.openMatch(chatID, strings.TrimPrefix(data, "open:"))
	case strings.HasPrefix(data, "score:"):
		kind, ok := b.TempData.Take(chatID, "score_kind")
		if !ok {
			b.sendMessage(chatID, "Действие устарело, повторите команду.")
			break
		}
		s, ok := b.currentSession(chatID)
		if !ok {
			break
		}
		b.addScore(chatID, s, models.ScoreKind(kind), models.Side(strings.TrimPrefix(data, "score:")), 0)
	}
	b.Sender.Request(tgbotapi.NewCallback(query.ID, ""))
}
