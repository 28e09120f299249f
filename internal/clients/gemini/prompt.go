package gemini

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"

	"github.com/aristath/investai/internal/domain"
)

// notAvailable fills the macro indicator slots until a rates feed exists
const notAvailable = "N/A"

const promptPT = `Você é um **Gestor de Portfólio Sênior (CFA)** e Arquiteto de Investimentos.
Sua missão é analisar a carteira do cliente com profundidade, usando dados fundamentalistas e o contexto de mercado atual.

**CONTEXTO DE MERCADO:**
%s

**DIRETRIZES DE ANÁLISE:**
1.  **Contexto Macro:** Explique brevemente como o cenário atual impacta a carteira.
2.  **Análise da Carteira:** Avalie a diversificação e riscos.
3.  **REGRA DE OURO (RENDA FIXA):**
    - Se a categoria 'RENDA_FIXA' estiver alta, considere como reserva de oportunidade.
    - Não sugira venda de Renda Fixa sem necessidade de liquidez.
4.  **Tom de Voz:** Executivo, direto, sofisticado.

**DADOS DA CARTEIRA:**
%s`

const promptEN = `You are a **Senior Portfolio Manager (CFA)** and Investment Architect.
Your mission is to deeply analyze the client's portfolio using fundamental data and current market context.

**MARKET CONTEXT:**
%s

**ANALYSIS GUIDELINES:**
1.  **Macro Context:** Briefly explain how the current scenario impacts the portfolio.
2.  **Portfolio Analysis:** Evaluate diversification and risks.
3.  **GOLDEN RULE (FIXED INCOME):**
    - If 'RENDA_FIXA' (Fixed Income) is high, consider it an opportunity reserve.
    - Do not suggest selling Fixed Income unless liquidity is needed.
4.  **Tone:** Executive, direct, sophisticated.

**PORTFOLIO DATA:**
%s`

// Summary is the numeric digest of a portfolio that goes into the prompt
type Summary struct {
	Total         float64
	Allocations   []float64 // percent of Total, same order as the holdings
	Concentration float64   // Herfindahl index of the weights, 0..1
}

// Summarize computes totals and allocation weights
func Summarize(holdings []domain.HoldingValue) Summary {
	values := make([]float64, len(holdings))
	for i, h := range holdings {
		values[i] = h.Value.InexactFloat64()
	}

	s := Summary{
		Total:       floats.Sum(values),
		Allocations: make([]float64, len(values)),
	}
	if s.Total <= 0 {
		return s
	}

	weights := make([]float64, len(values))
	copy(weights, values)
	floats.Scale(1/s.Total, weights)
	s.Concentration = floats.Dot(weights, weights)

	copy(s.Allocations, weights)
	floats.Scale(100, s.Allocations)
	return s
}

// BuildPrompt renders the analyst prompt for the given holdings. Values are
// formatted in currency (an ISO 4217 code).
func BuildPrompt(holdings []domain.HoldingValue, lang domain.Language, currency string) string {
	summary := Summarize(holdings)
	en := lang == domain.LanguageEN

	// Floats are only good enough for the weights; the printed total stays exact
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.Value)
	}

	var b strings.Builder
	if en {
		fmt.Fprintf(&b, "Total Value: %s\n", formatMoney(total, currency))
	} else {
		fmt.Fprintf(&b, "Valor Total: %s\n", formatMoney(total, currency))
	}
	fmt.Fprintf(&b, "Indices: Selic %s | CDI %s | PTAX %s\n", notAvailable, notAvailable, notAvailable)
	if en {
		b.WriteString("Assets:\n")
	} else {
		b.WriteString("Ativos:\n")
	}
	for i, h := range holdings {
		fmt.Fprintf(&b, "- %s (%s): %s (%.1f%%)\n",
			h.Ticker, categoryLabel(h.Category), formatMoney(h.Value, currency), summary.Allocations[i])
	}
	if en {
		fmt.Fprintf(&b, "Concentration (HHI): %.3f\n", summary.Concentration)
	} else {
		fmt.Fprintf(&b, "Concentração (HHI): %.3f\n", summary.Concentration)
	}

	if en {
		return fmt.Sprintf(promptEN, "Market news unavailable at the moment.", b.String())
	}
	return fmt.Sprintf(promptPT, "Notícias de mercado indisponíveis no momento.", b.String())
}

func categoryLabel(c string) string {
	if c == "" {
		return notAvailable
	}
	return c
}

// formatMoney renders amount with the currency's symbol and separators,
// falling back to a plain two-decimal number for unknown codes.
func formatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return currency + " " + amount.StringFixed(2)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}
