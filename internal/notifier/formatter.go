package notifier

import (
	"fmt"
	"html"
	"strings"

	"SignalBench/internal/model"
)

// FormatSummary renders the run summary as plain text.
func FormatSummary(res *model.RunResult) string {
	s := res.Summary
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Bars: %d | feature rows: %d | train/held-out: %d/%d\n",
		s.Bars, s.FeatureRows, s.TrainRows, s.HeldOutRows))
	b.WriteString(fmt.Sprintf("Classifier: %s (cv %.3f, held-out accuracy %.1f%%)\n",
		s.Classifier, s.ClassifierCV, s.HeldOutAccuracy*100))
	b.WriteString(fmt.Sprintf("Regressor: %s (cv %.3f, held-out RMSE %.4f)\n",
		s.Regressor, s.RegressorCV, s.HeldOutRMSE))
	b.WriteString(fmt.Sprintf("Trades: %d | exposure: %.1f%% | max drawdown: %.1f%%\n",
		s.Trades, s.Exposure*100, s.MaxDrawdown*100))
	b.WriteString(fmt.Sprintf("Buy & hold: %+.2f%% (log %+.4f)\n", s.RawReturnPct*100, s.CumRawReturn))
	b.WriteString(fmt.Sprintf("Strategy:   %+.2f%% (log %+.4f)\n", s.StrategyReturnPct*100, s.CumStrategyReturn))

	if n := len(res.Records); n > 0 {
		last := res.Records[n-1]
		b.WriteString(fmt.Sprintf("Last bar %s close %.2f, position %s",
			last.Bar.Date.Format("2006-01-02"), last.Bar.Close, last.Position))
		if last.Signal == model.SignalUp {
			b.WriteString(", signal up")
		} else if last.Signal == model.SignalDown {
			b.WriteString(", signal down")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatRunReport formats a finished run into a Telegram message.
func FormatRunReport(res *model.RunResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>SignalBench %s</b> | %s\n\n",
		html.EscapeString(res.Symbol), res.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(html.EscapeString(FormatSummary(res)))

	edge := res.Summary.StrategyReturnPct - res.Summary.RawReturnPct
	if edge >= 0 {
		b.WriteString(fmt.Sprintf("\n✅ strategy ahead of buy &amp; hold by %.2f pts", edge*100))
	} else {
		b.WriteString(fmt.Sprintf("\n⚠️ strategy behind buy &amp; hold by %.2f pts", -edge*100))
	}
	return b.String()
}

// FormatFailure formats an aborted run.
func FormatFailure(symbol, kind string, err error) string {
	return fmt.Sprintf("❌ <b>SignalBench %s</b> run failed (%s)\n%s",
		html.EscapeString(symbol), kind, html.EscapeString(err.Error()))
}

// FormatHistory lists past runs, newest first.
func FormatHistory(runs []model.RunResult) string {
	if len(runs) == 0 {
		return "No runs recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent runs</b>\n\n")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%s %s: strategy %+.2f%% vs hold %+.2f%%, %d trades\n",
			r.StartedAt.Format("01-02 15:04"), html.EscapeString(r.Symbol),
			r.Summary.StrategyReturnPct*100, r.Summary.RawReturnPct*100, r.Summary.Trades))
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Commands:\n/run - run the pipeline now\n/last - show the latest result\n/history - list recent runs\n/help - this message"
}
