package service

import (
	"fmt"
	"strings"
	"time"

	"signal_bot/internal/models"
	gating "signal_bot/internal/modules/gating/service"
	scanner "signal_bot/internal/modules/scanner/service"
)

func formatSignal(sig models.Signal, decision models.Decision, ps *scanner.PendingSignal) string {
	var b strings.Builder

	switch decision {
	case models.DecisionAutoExecute:
		b.WriteString("🚀 *AUTO* ")
	case models.DecisionManualConfirm:
		b.WriteString("🤔 *CONFIRM* ")
	default:
		b.WriteString("📋 ")
	}

	arrow := "📈"
	if sig.Side == models.SideSell {
		arrow = "📉"
	}
	fmt.Fprintf(&b, "%s %s %s\n", arrow, sig.Instrument, sig.Side)
	fmt.Fprintf(&b, "Entry: `%.5f`\nSL: `%.5f`  TP: `%.5f`  R:R %.1f\n",
		sig.Entry, sig.StopLoss, sig.TakeProfit, sig.RiskReward())
	fmt.Fprintf(&b, "Confidence: *%s* (%.2f)  Strategy: %s", sig.Confidence, sig.Score, sig.Strategy)

	if ps != nil {
		fmt.Fprintf(&b, "\nValid until %s", ps.ExpiresAt.UTC().Format("15:04 MST"))
	}
	return b.String()
}

func formatStatus(st gating.Stats, pendingCount, aggregateMax int) string {
	var b strings.Builder

	b.WriteString("📊 *Gating status*\n")
	fmt.Fprintf(&b, "Window since %s UTC\n", st.WindowStart.UTC().Format("15:04"))
	for _, inst := range models.Instruments() {
		line := fmt.Sprintf("• %s: %d executed", inst, st.Counts[inst])
		if at, ok := st.LastSignal[inst]; ok {
			line += fmt.Sprintf(", last signal %s ago", time.Since(at).Round(time.Minute))
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "Total: %d/%d this period\n", st.Total, aggregateMax)
	fmt.Fprintf(&b, "Active zones: %d  Awaiting confirmation: %d", st.ActiveZones, pendingCount)
	return b.String()
}
