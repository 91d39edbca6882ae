package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
)

// maxDocumentSize ограничение Bot API на скачивание файлов
const maxDocumentSize = 20 << 20

// IsDocument матчер для RegisterHandlerMatchFunc
func IsDocument(update *models.Update) bool {
	return update.Message != nil && update.Message.Document != nil
}

// HandleDocument прикрепляет присланный файл к уроку из диалога загрузки
func (h *Handlers) HandleDocument(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !IsDocument(update) {
		return
	}
	msg := update.Message
	if h.stateManager.GetState(msg.From.ID) != state.StateDocumentUpload {
		h.sendMessage(ctx, b, msg.Chat.ID, "📎 Чтобы прикрепить файл, откройте урок и нажмите «Загрузить документ».")
		return
	}

	sess, _, ok := h.requireSession(ctx, b, msg)
	if !ok {
		return
	}
	lessonID, err := common.LessonID(h.states, sess.TelegramID)
	if err != nil {
		h.stateManager.ClearDialog(sess.TelegramID)
		h.replyError(ctx, b, msg.Chat.ID, err, "upload document")
		return
	}

	doc := msg.Document
	if doc.FileSize > maxDocumentSize {
		h.sendError(ctx, b, msg.Chat.ID, "❌ Файл больше 20 МБ")
		return
	}

	body, err := h.download(ctx, b, doc.FileID)
	if err != nil {
		h.replyError(ctx, b, msg.Chat.ID, err, "download document")
		return
	}
	defer body.Body.Close()

	name := doc.FileName
	if name == "" {
		name = fmt.Sprintf("lesson-%d", lessonID)
	}
	uploaded, err := h.lessonService.UploadDocument(ctx, sess, lessonID, name, body.Body)
	if err != nil {
		h.replyError(ctx, b, msg.Chat.ID, err, "upload document")
		return
	}
	h.stateManager.ClearDialog(sess.TelegramID)

	h.logger.Info("Document uploaded",
		zap.Int64("telegram_id", sess.TelegramID),
		zap.Int64("lesson_id", lessonID),
		zap.Int64("document_id", uploaded.ID))
	h.sendScreen(ctx, b, msg.Chat.ID, "✅ Документ прикреплён к уроку", lessonButtonByID(lessonID))
}

// download открывает файл Telegram по file_id
func (h *Handlers) download(ctx context.Context, b *bot.Bot, fileID string) (*http.Response, error) {
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.FileDownloadLink(file), nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}
	return resp, nil
}
