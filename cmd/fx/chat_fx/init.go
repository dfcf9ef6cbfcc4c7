package chat_fx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"bettybots/internal/services"
	"bettybots/pkg/config"
	"bettybots/pkg/utils"
)

var Module = fx.Provide(
	provideCompleter,
	fx.Annotate(services.NewChatService, fx.As(new(services.ChatServiceInterface))),
)

// provideCompleter returns nil when the selected provider has no key, which
// makes every chat reply the canned fallback.
func provideCompleter(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (utils.ChatCompleter, error) {
	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Warn("GEMINI_API_KEY not set, chat uses the fallback reply")
			return nil, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := utils.NewGeminiChatClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.StopHook(client.Close))
		return client, nil

	default:
		if cfg.OpenAIAPIKey == "" {
			log.Warn("OPENAI_API_KEY not set, chat uses the fallback reply")
			return nil, nil
		}
		return utils.NewOpenAIChatClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	}
}
