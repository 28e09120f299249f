package gemini

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/domain"
)

type degradedText struct {
	pt, en string
}

func (d degradedText) in(lang domain.Language) string {
	if lang == domain.LanguageEN {
		return d.en
	}
	return d.pt
}

var (
	msgNoAPIKey = degradedText{
		pt: "Análise de IA indisponível (Chave API não configurada).",
		en: "AI Analysis unavailable (API Key not set).",
	}
	msgNoModel = degradedText{
		pt: "Modelo de IA não disponível.",
		en: "AI Model not available.",
	}
	msgQuota = degradedText{
		pt: "Cota de IA excedida. Por favor, aguarde 1 minuto e tente novamente.",
		en: "AI Quota exceeded. Please wait 1 minute.",
	}
	msgFailed = degradedText{
		pt: "Não foi possível gerar a análise no momento.",
		en: "Unable to generate analysis at the moment.",
	}
)

// Generator implements domain.NarrativeGenerator over an ordered list of
// backends. The first backend to answer wins. It never returns an error:
// every failure mode maps to a localized placeholder text.
type Generator struct {
	apiKeySet bool
	backends  []Backend
	currency  string
	log       zerolog.Logger
}

// NewGenerator creates a generator. apiKeySet false short-circuits every
// call to the "API key not set" text.
func NewGenerator(apiKeySet bool, backends []Backend, currency string, log zerolog.Logger) *Generator {
	return &Generator{
		apiKeySet: apiKeySet,
		backends:  backends,
		currency:  currency,
		log:       log.With().Str("client", "gemini").Logger(),
	}
}

// Generate returns an analysis of holdings in lang
func (g *Generator) Generate(ctx context.Context, holdings []domain.HoldingValue, lang domain.Language) string {
	if !g.apiKeySet {
		g.log.Warn().Msg("GEMINI_API_KEY not set, skipping analysis")
		return msgNoAPIKey.in(lang)
	}
	if len(g.backends) == 0 {
		return msgNoModel.in(lang)
	}

	prompt := BuildPrompt(holdings, lang, g.currency)

	var lastErr error
	for _, b := range g.backends {
		text, err := b.Generate(ctx, prompt)
		if err == nil {
			g.log.Info().Str("model", b.Name()).Int("holdings", len(holdings)).Msg("Analysis generated")
			return text
		}
		lastErr = err
		g.log.Warn().Err(err).Str("model", b.Name()).Msg("Model failed, trying next")

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
	}

	g.log.Error().Err(lastErr).Msg("Error generating analysis")
	if IsQuotaError(lastErr) {
		return msgQuota.in(lang)
	}
	return msgFailed.in(lang)
}
