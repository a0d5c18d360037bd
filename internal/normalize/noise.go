package normalize

import "strings"

// Invoice boilerplate markers. Matching is by substring over the folded
// description because banks phrase these lines inconsistently
// ("PAGAMENTO EFETUADO", "PAGTO DEB AUTOM" and so on).
var noiseTokens = []string{
	"PAGAMENTO",
	"RESUMO",
	"TOTAL",
	"TOTAL FINAL",
	"TOTAL COMPRAS PARCELADAS",
	"TOTAL COMPRAS",
	"SUBTOTAL",
	"VENCIMENTO",
	"LIMITE",
	"CREDITO",
	"JUROS",
	"MULTA",
	"ENCARGO",
	"ANUIDADE",
	"TARIFA",
	"IOF",
	"AVISO",
	"FATURA",
	"SALDO PREVISTO",
	"DESPESAS A VENCER",
	"FATURA ANTERIOR",
	"AJUSTE",
}

// IsNoise reports whether a candidate description is invoice boilerplate
// (payment confirmations, totals, fees, due-date notices) rather than a
// real purchase.
func IsNoise(description string) bool {
	folded := Fold(description)

	for _, token := range noiseTokens {
		if strings.Contains(folded, token) {
			return true
		}
	}

	return false
}
