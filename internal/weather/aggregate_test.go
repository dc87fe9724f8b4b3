package weather

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanTemperature(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []Outcome
		wantMean float64
		wantN    int
	}{
		{
			name: "two successes and one failure",
			outcomes: []Outcome{
				{Provider: "a", Temperature: -14.0},
				{Provider: "b", Temperature: -13.0},
				{Provider: "c", Err: errors.New("boom")},
			},
			wantMean: -13.5,
			wantN:    2,
		},
		{
			name: "single success among failures",
			outcomes: []Outcome{
				{Provider: "a", Err: ErrTimeout},
				{Provider: "b", Temperature: 7.25},
				{Provider: "c", Err: ErrLocationNotFound},
			},
			wantMean: 7.25,
			wantN:    1,
		},
		{
			name: "failed outcome temperature is ignored",
			outcomes: []Outcome{
				{Provider: "a", Temperature: 100, Err: ErrTimeout},
				{Provider: "b", Temperature: 10},
			},
			wantMean: 10,
			wantN:    1,
		},
		{
			name:     "no successes",
			outcomes: []Outcome{{Provider: "a", Err: ErrTimeout}},
			wantMean: 0,
			wantN:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, n := MeanTemperature(tt.outcomes)
			assert.InDelta(t, tt.wantMean, mean, 1e-9)
			assert.Equal(t, tt.wantN, n)
		})
	}
}

func TestPadForecast(t *testing.T) {
	short := PadForecast([]DayTemp{Temp(1), Temp(2)})
	assert.Len(t, short, ForecastDays)
	assert.Equal(t, Temp(2), short[1])
	assert.False(t, short[2].Valid)
	assert.False(t, short[4].Valid)

	long := PadForecast([]DayTemp{Temp(1), Temp(2), Temp(3), Temp(4), Temp(5), Temp(6), Temp(7)})
	assert.Len(t, long, ForecastDays)
	assert.Equal(t, Temp(5), long[4])

	empty := PadForecast(nil)
	for _, d := range empty {
		assert.False(t, d.Valid)
	}
}

func TestMergeDay(t *testing.T) {
	absent := DayTemp{}
	cases := []struct {
		a, b DayTemp
		want DayTemp
	}{
		{Temp(-9.8), Temp(-9.0), Temp(-9.4)},
		{Temp(3), absent, Temp(3)},
		{absent, Temp(-6), Temp(-6)},
		{absent, absent, absent},
	}

	for _, c := range cases {
		got := MergeDay(c.a, c.b)
		assert.Equal(t, c.want.Valid, got.Valid)
		assert.InDelta(t, c.want.Celsius, got.Celsius, 1e-9)

		// Order of providers must not matter.
		swapped := MergeDay(c.b, c.a)
		assert.Equal(t, got.Valid, swapped.Valid)
		assert.InDelta(t, got.Celsius, swapped.Celsius, 1e-9)
	}
}

func TestMergeForecasts(t *testing.T) {
	a := PadForecast([]DayTemp{Temp(-9.8), Temp(-6.8), Temp(-4.2)})
	b := PadForecast([]DayTemp{Temp(-9.0), Temp(-11.0), Temp(-9.0), Temp(-6.0), Temp(-7.0)})
	want := []float64{-9.4, -8.9, -6.6, -6.0, -7.0}

	for _, merged := range []Forecast{MergeForecasts(a, b), MergeForecasts(b, a)} {
		for i, w := range want {
			assert.True(t, merged[i].Valid, "day %d", i)
			assert.InDelta(t, w, merged[i].Celsius, 1e-9, "day %d", i)
		}
	}
}

func TestRound1(t *testing.T) {
	assert.Equal(t, -13.5, Round1(-13.5))
	assert.Equal(t, 12.3, Round1(12.34))
	assert.Equal(t, -8.9, Round1(-8.9000000001))
}
