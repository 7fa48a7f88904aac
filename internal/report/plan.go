package report

import "time"

// Plan lists the optional sections for a run. News and jobs run every day.
type Plan struct {
	Stocks      bool
	MutualFunds bool
	SAPInsights bool
	Career      bool
}

// PlanForDay: markets are skipped on Sunday, SAP insights run on Saturday,
// career analysis on Monday and Saturday.
func PlanForDay(day time.Weekday) Plan {
	return Plan{
		Stocks:      day != time.Sunday,
		MutualFunds: day != time.Sunday,
		SAPInsights: day == time.Saturday,
		Career:      day == time.Monday || day == time.Saturday,
	}
}

// Sections names what the plan will collect, in report order.
func (p Plan) Sections() []string {
	out := []string{"news"}
	if p.Stocks {
		out = append(out, "stocks")
	}
	if p.MutualFunds {
		out = append(out, "mutual_funds")
	}
	out = append(out, "jobs")
	if p.SAPInsights {
		out = append(out, "sap")
	}
	if p.Career {
		out = append(out, "career")
	}
	return out
}
