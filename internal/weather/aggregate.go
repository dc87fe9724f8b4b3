package weather

// MeanTemperature returns the unweighted mean of the successful outcomes and
// how many contributed. With no successes it returns (0, 0).
func MeanTemperature(outcomes []Outcome) (float64, int) {
	var (
		sum float64
		n   int
	)
	for _, o := range outcomes {
		if !o.OK() {
			continue
		}
		sum += o.Temperature
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// PadForecast aligns a provider's day sequence to exactly ForecastDays entries.
// Missing trailing days stay absent; days past the last index are dropped.
func PadForecast(days []DayTemp) Forecast {
	var f Forecast
	copy(f[:], days)
	return f
}

// MergeDay combines two optional temperatures for the same day.
// Both present gives their mean, one present is kept unchanged, none stays absent.
func MergeDay(a, b DayTemp) DayTemp {
	switch {
	case a.Valid && b.Valid:
		return Temp((a.Celsius + b.Celsius) / 2)
	case a.Valid:
		return a
	case b.Valid:
		return b
	default:
		return DayTemp{}
	}
}

// MergeForecasts merges two aligned forecasts day by day.
func MergeForecasts(a, b Forecast) Forecast {
	var merged Forecast
	for i := range merged {
		merged[i] = MergeDay(a[i], b[i])
	}
	return merged
}
