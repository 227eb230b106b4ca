package bot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	config "github.com/gpowereth/blogbot/configs"
	"github.com/gpowereth/blogbot/internal/queue"
	"github.com/gpowereth/blogbot/internal/service"
	"github.com/h2non/filetype"
	"github.com/hibiken/asynq"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	cmdStart     = "start"
	cmdPost      = "post"
	cmdList      = "list"
	cmdCancel    = "cancel"
	cmdUnpublish = "unpublish"

	callbackConfirm = "confirm"
	callbackCancel  = "cancel"
)

const helpText = "🤖 *G-Power Blog Bot*\n\n" +
	"Welcome! I help you manage blog posts for G-Power Ethiopia.\n\n" +
	"Available commands:\n" +
	"• /start - Show this message\n" +
	"• /post - Create a new blog post\n" +
	"• /list - Show recent posts\n" +
	"• /cancel - Cancel current operation\n\n" +
	"Use /post to start creating content!"

// Handler drives the post-creation conversation. One Handler serves every
// chat; all per-chat state lives in the SessionManager.
type Handler struct {
	cfg      *config.Config
	sessions *SessionManager
	ps       service.PostService
	es       service.ExportService
	is       service.ImageService
	fetcher  PhotoFetcher
	api      TelegramAPI

	// AsynqClient is optional. When set, the post-publish export rebuild is
	// queued instead of written inline.
	AsynqClient *asynq.Client
}

func NewHandler(
	cfg *config.Config,
	api TelegramAPI,
	fetcher PhotoFetcher,
	ps service.PostService,
	es service.ExportService,
	is service.ImageService,
	asynqClient *asynq.Client) *Handler {
	return &Handler{
		cfg:         cfg,
		sessions:    NewSessionManager(),
		ps:          ps,
		es:          es,
		is:          is,
		fetcher:     fetcher,
		api:         api,
		AsynqClient: asynqClient,
	}
}

// HandleUpdate dispatches one inbound update. It never lets a failure
// escape: anything unexpected is logged and answered with a generic apology.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error(fmt.Sprintf("panic handling update: %v", r))
			h.apologize(update)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		h.handleCommand(ctx, update.Message)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case cmdStart:
		h.replyMarkdown(chatID, helpText)
	case cmdPost:
		h.sessions.Begin(chatID)
		h.replyMarkdown(chatID, "📸 *Let's create a blog post!*\n\n"+
			"Please send me the photo for your blog post.\n\n"+
			"💡 *Tip:* For best results, send images under 5MB.")
	case cmdList:
		h.handleList(ctx, chatID)
	case cmdCancel:
		h.sessions.Cancel(chatID)
		h.reply(chatID, "❌ Operation canceled.")
	case cmdUnpublish:
		h.handleUnpublish(ctx, msg)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	session, ok := h.sessions.Get(chatID)
	if !ok {
		// Chatter outside a conversation is ignored.
		return
	}

	switch session.State {
	case StateAwaitingPhoto:
		if len(msg.Photo) == 0 {
			h.reply(chatID, "Please send a photo to continue, or /cancel to stop.")
			return
		}
		h.receivePhoto(ctx, session, msg)
	case StateAwaitingHeading:
		if msg.Text == "" {
			h.reply(chatID, "Please send the heading as text, or /cancel to stop.")
			return
		}
		session.Draft.Heading = msg.Text
		session.State = StateAwaitingCaption
		h.replyMarkdown(chatID, "📝 *Heading received!*\n\nNow send me the detailed caption/description. ✍️")
	case StateAwaitingCaption:
		if msg.Text == "" {
			h.reply(chatID, "Please send the caption as text, or /cancel to stop.")
			return
		}
		session.Draft.Caption = msg.Text
		h.sendPreview(session)
	case StateAwaitingConfirmation:
		h.reply(chatID, "Use the preview buttons to confirm or cancel the post.")
	}
}

func (h *Handler) receivePhoto(ctx context.Context, session *Session, msg *tgbotapi.Message) {
	chatID := session.ChatID

	if err := os.MkdirAll(h.cfg.ImagesDir, 0o755); err != nil {
		h.abortSession(chatID, err)
		return
	}

	// The last rendition in the list is the largest one Telegram offers.
	photo := msg.Photo[len(msg.Photo)-1]

	name, err := gonanoid.New()
	if err != nil {
		h.abortSession(chatID, err)
		return
	}
	rawPath := filepath.Join(h.cfg.ImagesDir, fmt.Sprintf("blog_%s.jpg", name))

	if err := h.fetcher.Download(ctx, photo.FileID, rawPath); err != nil {
		h.abortSession(chatID, err)
		return
	}

	if err := checkImageFile(rawPath); err != nil {
		os.Remove(rawPath)
		h.abortSession(chatID, err)
		return
	}

	session.Draft.PhotoRawPath = rawPath
	session.Draft.PhotoOptimizedPath = h.is.Normalize(rawPath)
	session.State = StateAwaitingHeading

	h.replyMarkdown(chatID, "✅ *Photo received!*\n\nNow send me the heading (title). 📰")
}

func (h *Handler) sendPreview(session *Session) {
	preview := tgbotapi.NewPhoto(session.ChatID, tgbotapi.FilePath(session.Draft.PhotoPath()))
	preview.Caption = fmt.Sprintf("📰 *Blog Post Preview*\n\n*%s*\n\n%s", session.Draft.Heading, session.Draft.Caption)
	preview.ParseMode = tgbotapi.ModeMarkdown
	preview.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm Post", callbackConfirm),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancel),
		),
	)

	if _, err := h.api.Send(preview); err != nil {
		h.reply(session.ChatID, "❌ Error creating preview: "+err.Error())
		h.sessions.Cancel(session.ChatID)
		return
	}

	session.State = StateAwaitingConfirmation
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := h.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		slog.Warn(err.Error())
	}

	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	session, ok := h.sessions.Get(chatID)
	if !ok || session.State != StateAwaitingConfirmation {
		return
	}

	switch cb.Data {
	case callbackConfirm:
		h.confirmPost(ctx, session, cb)
	case callbackCancel:
		h.sessions.Cancel(chatID)
		h.editCaption(cb, "❌ Post creation canceled.", false)
	}
}

func (h *Handler) confirmPost(ctx context.Context, session *Session, cb *tgbotapi.CallbackQuery) {
	draft := session.Draft

	id, err := h.ps.Publish(ctx, draft.PhotoPath(), draft.Heading, draft.Caption)
	if err != nil {
		// No retry: the failure message goes to the user verbatim and the
		// conversation ends. The draft files stay on disk.
		h.editCaption(cb, "❌ Error saving post: "+err.Error(), false)
		h.sessions.End(session.ChatID)
		return
	}

	h.triggerExport(ctx, id)

	h.editCaption(cb, fmt.Sprintf("✅ *Post Published Successfully!*\n\n"+
		"*%s*\n\n"+
		"Post ID: #%d\n"+
		"The post is now live on the G-Power website! 🎉", draft.Heading, id), true)
	h.sessions.End(session.ChatID)
}

// triggerExport rebuilds the website export after a change to the published
// set. Failures are logged only; the change itself has already been
// committed and reported.
func (h *Handler) triggerExport(ctx context.Context, postID int64) {
	if h.AsynqClient != nil {
		if err := queue.EnqueueExport(h.AsynqClient, queue.ExportPostsPayload{PostID: postID}); err != nil {
			slog.Warn("error scheduling export: " + err.Error())
		}
		return
	}

	if err := h.es.Write(ctx); err != nil {
		slog.Warn("error writing export: " + err.Error())
	}
}

func (h *Handler) handleList(ctx context.Context, chatID int64) {
	posts, err := h.ps.ListRecent(ctx, 5)
	if err != nil {
		h.reply(chatID, "❌ Unable to list posts.")
		return
	}
	if len(posts) == 0 {
		h.reply(chatID, "📭 No blog posts found.")
		return
	}

	var b strings.Builder
	b.WriteString("📝 *Recent Blog Posts:*\n\n")
	for _, post := range posts {
		fmt.Fprintf(&b, "*#%d* - %s\n", post.ID, post.Heading)
		fmt.Fprintf(&b, "📅 %s\n\n", post.CreatedAt.Format("Jan 02, 2006"))
	}
	h.replyMarkdown(chatID, b.String())
}

func (h *Handler) handleUnpublish(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.From == nil || !h.cfg.IsAdmin(msg.From.ID) {
		h.reply(chatID, "This command is restricted.")
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil {
		h.reply(chatID, "Usage: /unpublish <post id>")
		return
	}

	if err := h.ps.Unpublish(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.reply(chatID, fmt.Sprintf("Post #%d not found.", id))
		} else {
			h.reply(chatID, "❌ Error unpublishing post: "+err.Error())
		}
		return
	}

	h.triggerExport(ctx, id)
	h.reply(chatID, fmt.Sprintf("Post #%d unpublished.", id))
}

// abortSession reports an internal failure and cancels the conversation, as
// the original photo step did.
func (h *Handler) abortSession(chatID int64, err error) {
	h.reply(chatID, "❌ Error: "+err.Error()+"\nPlease try again with /post")
	h.sessions.Cancel(chatID)
}

func (h *Handler) apologize(update tgbotapi.Update) {
	var chatID int64
	switch {
	case update.Message != nil:
		chatID = update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
	default:
		return
	}
	h.reply(chatID, "❌ An error occurred. Please try again.")
}

func (h *Handler) reply(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) replyMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	h.send(msg)
}

func (h *Handler) editCaption(cb *tgbotapi.CallbackQuery, text string, markdown bool) {
	edit := tgbotapi.NewEditMessageCaption(cb.Message.Chat.ID, cb.Message.MessageID, text)
	if markdown {
		edit.ParseMode = tgbotapi.ModeMarkdown
	}
	h.send(edit)
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.api.Send(c); err != nil {
		slog.Error(err.Error())
	}
}

// checkImageFile verifies that a downloaded file really is a raster image in
// a format the normalizer and the site can handle.
func checkImageFile(path string) error {
	head := make([]byte, 261)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	n, _ := f.Read(head)
	f.Close()

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return errors.New("unsupported file type")
	}

	switch kind.Extension {
	case "jpg", "jpeg", "png", "webp":
		return nil
	default:
		return fmt.Errorf("file type %s is not allowed", kind.Extension)
	}
}
