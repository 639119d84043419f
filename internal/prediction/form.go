package prediction

// Form captures short-window deviation from season form
type Form struct {
	SeasonAverage float64
	RecentAverage float64
	Delta         float64
}

// FormAdjustment compares the mean of the FormWindow most recent values with the
// season-to-date mean. values are newest first and must be non-empty.
func FormAdjustment(values []float64, cfg Config) Form {
	if len(values) == 0 {
		return Form{}
	}
	season := mean(values)
	last := mean(recent(values, cfg.FormWindow))
	return Form{
		SeasonAverage: season,
		RecentAverage: last,
		Delta:         (last - season) * cfg.FormWeight,
	}
}
