package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{name: "hours and minutes", input: "09:30", want: 9*60 + 30},
		{name: "seconds dropped", input: "10:00:59", want: 10 * 60},
		{name: "surrounding spaces", input: " 08:15 ", want: 8*60 + 15},
		{name: "midnight start", input: "00:00", want: 0},
		{name: "end of day", input: "24:00", want: minutesPerDay},
		{name: "end of day with seconds", input: "24:00:00", want: minutesPerDay},
		{name: "trailing garbage", input: "10:00abc", wantErr: true},
		{name: "trailing garbage after seconds", input: "10:00:00junk", wantErr: true},
		{name: "single digit minute", input: "10:5", wantErr: true},
		{name: "single digit hour", input: "1:05", wantErr: true},
		{name: "past end of day", input: "24:01", wantErr: true},
		{name: "end of day with seconds set", input: "24:00:30", wantErr: true},
		{name: "hour out of range", input: "25:00", wantErr: true},
		{name: "minute out of range", input: "10:60", wantErr: true},
		{name: "second out of range", input: "10:00:60", wantErr: true},
		{name: "negative", input: "-1:00", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "not a clock", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayUnmarshalJSON(t *testing.T) {
	var body struct {
		Start TimeOfDay `json:"start_time"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start_time":"18:45"}`), &body))
	assert.Equal(t, TimeOfDay(18*60+45), body.Start)
	assert.Equal(t, "18:45", body.Start.String())

	assert.Error(t, json.Unmarshal([]byte(`{"start_time":"18:45pm"}`), &body))
	assert.Error(t, json.Unmarshal([]byte(`{"start_time":1845}`), &body))
}

func TestTimeOfDayScanString(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.Scan("07:05:00"))
	assert.Equal(t, TimeOfDay(7*60+5), tod)
	assert.Error(t, tod.Scan([]byte("07:05x")))
}
