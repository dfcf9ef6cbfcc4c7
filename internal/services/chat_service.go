package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"bettybots/internal/models/request_models"
	"bettybots/pkg/config"
	"bettybots/pkg/metrics"
	"bettybots/pkg/utils"
)

const (
	maxHistoryTurns  = 10
	maxMessageRunes  = 2000
	chatReplyTimeout = 30 * time.Second
)

// FallbackReply is served whenever no model answer is available.
const FallbackReply = "Merci pour votre message ! Je ne peux pas vous répondre précisément pour le moment. " +
	"Laissez-nous votre nom et votre e-mail, nous revenons vers vous très vite."

type ChatServiceInterface interface {
	Reply(ctx context.Context, req request_models.ChatRequest) (string, error)
}

type ChatService struct {
	tenants       TenantServiceInterface
	subscriptions SubscriptionServiceInterface
	completer     utils.ChatCompleter
	cfg           *config.Config
	log           *zap.Logger
}

// NewChatService accepts a nil completer, in which case every reply is the
// fallback.
func NewChatService(
	tenants TenantServiceInterface,
	subscriptions SubscriptionServiceInterface,
	completer utils.ChatCompleter,
	cfg *config.Config,
	log *zap.Logger,
) *ChatService {
	return &ChatService{
		tenants:       tenants,
		subscriptions: subscriptions,
		completer:     completer,
		cfg:           cfg,
		log:           log,
	}
}

func (s *ChatService) Reply(ctx context.Context, req request_models.ChatRequest) (string, error) {
	tenant, err := s.tenants.GetTenant(ctx, req.TenantID)
	if err != nil {
		return "", err
	}

	active, err := s.subscriptions.IsActive(ctx, tenant.TenantID)
	if err != nil {
		return "", err
	}
	if !active {
		return "", utils.ErrSubscriptionInactive
	}

	message := truncateRunes(strings.TrimSpace(req.Message), maxMessageRunes)
	if message == "" {
		return "", utils.NewValidationError("missing-message")
	}

	if s.completer == nil {
		metrics.ObserveChatCompletion("none", false)
		return FallbackReply, nil
	}

	persona := PersonaFor(tenant.Role, s.cfg.DefaultRole)
	system := SystemPrompt(persona, tenant.PromptCustom, s.cfg.BrandName)

	ctx, cancel := context.WithTimeout(ctx, chatReplyTimeout)
	defer cancel()

	reply, err := s.completer.Complete(ctx, system, boundHistory(req.History), message)
	if err != nil {
		s.log.Warn("chat completion failed, serving fallback",
			zap.String("tenant", tenant.TenantID),
			zap.String("provider", s.completer.Provider()),
			zap.Error(err))
		metrics.ObserveChatCompletion(s.completer.Provider(), false)
		return FallbackReply, nil
	}

	metrics.ObserveChatCompletion(s.completer.Provider(), true)
	return reply, nil
}

// boundHistory keeps the last turns with a known role and non-empty content.
func boundHistory(turns []request_models.ChatTurn) []utils.ChatMessage {
	out := make([]utils.ChatMessage, 0, len(turns))
	for _, t := range turns {
		content := truncateRunes(strings.TrimSpace(t.Content), maxMessageRunes)
		if content == "" {
			continue
		}
		switch t.Role {
		case "user", "assistant":
			out = append(out, utils.ChatMessage{Role: t.Role, Content: content})
		}
	}
	if len(out) > maxHistoryTurns {
		out = out[len(out)-maxHistoryTurns:]
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
