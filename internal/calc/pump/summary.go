package pump

import (
	"fmt"
	"iter"
)

const NoResults = "No results to display. Please run calculation."

// Summary yields the display lines of res, or a single NoResults line when
// res is nil. Values are formatted to two decimals.
func Summary(res *Result) iter.Seq[string] {
	return func(yield func(string) bool) {
		if res == nil {
			yield(NoResults)
			return
		}
		lines := []string{
			"Calculation Results",
			fmt.Sprintf("Total Dynamic Head (TDH): %s %s", FormatValue(res.TDH), res.HeadUnit),
			fmt.Sprintf("Required Power: %s %s", FormatValue(res.RequiredPower), res.PowerUnit),
			"---",
			"Head Breakdown",
			fmt.Sprintf("Total Friction Loss: %s %s", FormatValue(res.TotalFriction), res.HeadUnit),
			fmt.Sprintf("  Suction Loss: %s %s", FormatValue(res.SuctionFriction), res.HeadUnit),
			fmt.Sprintf("  Discharge Loss: %s %s", FormatValue(res.DischargeFriction), res.HeadUnit),
		}
		for _, l := range lines {
			if !yield(l) {
				return
			}
		}
	}
}

// Summary renders the engine's last result.
func (e *Engine) Summary() iter.Seq[string] {
	return Summary(e.result)
}

func FormatValue(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
